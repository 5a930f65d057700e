package driven

import "context"

// IJournal is the per-session audit trail. Every method is best-effort from
// the caller's point of view: a journal failure never fails the operation
// that triggered it.
type IJournal interface {
	OpenSession(ctx context.Context, agentID string) (string, error)
	RecordLocation(ctx context.Context, sessionID string, pos Position) error
	RecordAccept(ctx context.Context, sessionID, orderID string, distanceKm float64, etaMinutes int) error
	CloseSession(ctx context.Context, sessionID string) error
}
