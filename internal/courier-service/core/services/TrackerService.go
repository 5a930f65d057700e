package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"courier-console/internal/courier-service/core/domain/model"
	"courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/geo"
	"courier-console/internal/mylogger"
)

// publishThresholdKm is the nominal movement gate between device fixes and
// the orders store. The predicate applies its own fixed angular threshold.
const publishThresholdKm = 0.1

// AgentLocationSink receives each successful fix. The orders store is the
// production sink.
type AgentLocationSink interface {
	UpdateAgentLocation(loc model.GeoPoint)
}

// TrackerService polls the geolocation capability on a fixed interval while
// the agent is available for delivery. A failed read records an error but
// never stops the timer; the next tick retries regardless.
type TrackerService struct {
	provider    driven.IGeolocationProvider
	sink        AgentLocationSink
	journal     driven.IJournal // nil when journaling is disabled
	sessionID   string
	readTimeout time.Duration
	log         mylogger.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	tracking  bool
	position  model.TrackedPosition
	published bool // at least one fix has reached the sink
	lastErr   string
}

func NewTrackerService(provider driven.IGeolocationProvider, sink AgentLocationSink, journal driven.IJournal, sessionID string, readTimeout time.Duration, log mylogger.Logger) *TrackerService {
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	return &TrackerService{
		provider:    provider,
		sink:        sink,
		journal:     journal,
		sessionID:   sessionID,
		readTimeout: readTimeout,
		log:         log,
	}
}

// Start begins polling: one immediate fix, then one per interval. Any prior
// timer is cancelled first, so repeated Start calls never leak a loop.
func (s *TrackerService) Start(interval time.Duration) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.tracking = true
	s.published = false // first fix of a session always reaches the store
	s.mu.Unlock()

	s.log.Action("tracking_started").Info("location tracking started", "interval", interval.String())
	go s.run(ctx, interval)
}

// Stop cancels the polling loop. Idempotent.
func (s *TrackerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.log.Action("tracking_stopped").Info("location tracking stopped")
	}
	s.tracking = false
}

func (s *TrackerService) Tracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

func (s *TrackerService) Position() model.TrackedPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *TrackerService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *TrackerService) run(ctx context.Context, interval time.Duration) {
	s.updatePosition(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updatePosition(ctx)
		}
	}
}

func (s *TrackerService) updatePosition(ctx context.Context) {
	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(readCtx)
	if err != nil {
		msg := "Location error"
		var perr *driven.PositionError
		if errors.As(err, &perr) {
			msg = perr.Message()
		}
		s.mu.Lock()
		s.lastErr = msg
		s.mu.Unlock()
		s.log.Action("location_fix").Warn("failed to obtain position", "reason", err.Error())
		return
	}

	// A fix that lands after Stop must not be published.
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	prev := s.position
	hadPublished := s.published
	s.position = model.TrackedPosition{
		Latitude:       pos.Latitude,
		Longitude:      pos.Longitude,
		AccuracyMeters: pos.AccuracyMeters,
		Timestamp:      pos.Timestamp,
		Known:          true,
	}
	s.lastErr = ""
	s.mu.Unlock()

	if s.journal != nil {
		if jerr := s.journal.RecordLocation(ctx, s.sessionID, pos); jerr != nil {
			s.log.Action("location_fix").Warn("journal write failed", "reason", jerr.Error())
		}
	}

	// Stationary fixes are dropped before the store to spare it wholesale
	// distance recomputes. The first fix always goes through.
	if hadPublished && !geo.HasMovedSignificantly(
		prev.Latitude, prev.Longitude, pos.Latitude, pos.Longitude, publishThresholdKm) {
		return
	}

	if s.sink != nil {
		s.sink.UpdateAgentLocation(model.GeoPoint{
			Longitude: pos.Longitude,
			Latitude:  pos.Latitude,
		})
		s.mu.Lock()
		s.published = true
		s.mu.Unlock()
	}
}
