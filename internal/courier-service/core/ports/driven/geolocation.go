package driven

import (
	"context"
	"fmt"
	"time"
)

// Position is one device fix from the geolocation capability.
type Position struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Timestamp      time.Time
}

type PositionErrorCode string

const (
	PositionPermissionDenied PositionErrorCode = "PERMISSION_DENIED"
	PositionUnavailable      PositionErrorCode = "POSITION_UNAVAILABLE"
	PositionTimeout          PositionErrorCode = "TIMEOUT"
	PositionUnknown          PositionErrorCode = "UNKNOWN"
)

// PositionError classifies a failed fix so the tracker can surface a
// human-readable message without stopping its retry loop.
type PositionError struct {
	Code PositionErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("geolocation %s: %v", e.Code, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the agent for this failure class.
func (e *PositionError) Message() string {
	switch e.Code {
	case PositionPermissionDenied:
		return "Location access denied"
	case PositionUnavailable:
		return "Location unavailable"
	case PositionTimeout:
		return "Location request timed out"
	default:
		return "Location error"
	}
}

// IGeolocationProvider is the single OS/device-level capability the core
// touches. Each call must return a live fix, not a cached one.
type IGeolocationProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}
