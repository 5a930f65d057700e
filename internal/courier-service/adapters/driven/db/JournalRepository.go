package db

import (
	"context"

	"courier-console/internal/courier-service/core/ports/driven"

	"github.com/google/uuid"
)

// JournalRepository writes the per-session audit trail: one row per delivery
// session, one per successful location fix, one per accepted order.
type JournalRepository struct {
	db *DataBase
}

var _ driven.IJournal = (*JournalRepository)(nil)

func NewJournalRepository(db *DataBase) *JournalRepository {
	return &JournalRepository{db: db}
}

func (jr *JournalRepository) OpenSession(ctx context.Context, agentID string) (string, error) {
	sessionID := uuid.NewString()
	InsertSessionQuery := `
		INSERT INTO agent_sessions(session_id, agent_id)
		VALUES ($1, $2);
	`
	_, err := jr.db.GetConn().Exec(ctx, InsertSessionQuery, sessionID, agentID)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (jr *JournalRepository) RecordLocation(ctx context.Context, sessionID string, pos driven.Position) error {
	InsertLocationQuery := `
		INSERT INTO location_history(session_id, latitude, longitude, accuracy_meters, fixed_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := jr.db.GetConn().Exec(ctx, InsertLocationQuery,
		sessionID, pos.Latitude, pos.Longitude, pos.AccuracyMeters, pos.Timestamp)
	return err
}

func (jr *JournalRepository) RecordAccept(ctx context.Context, sessionID, orderID string, distanceKm float64, etaMinutes int) error {
	InsertAcceptQuery := `
		INSERT INTO accepted_orders(session_id, order_id, distance_km, eta_minutes)
		VALUES ($1, $2, $3, $4);
	`
	_, err := jr.db.GetConn().Exec(ctx, InsertAcceptQuery, sessionID, orderID, distanceKm, etaMinutes)
	return err
}

func (jr *JournalRepository) CloseSession(ctx context.Context, sessionID string) error {
	UpdateSessionQuery := `
		UPDATE agent_sessions
		SET ended_at = NOW()
		WHERE session_id = $1;
	`
	_, err := jr.db.GetConn().Exec(ctx, UpdateSessionQuery, sessionID)
	return err
}
