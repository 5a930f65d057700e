package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"courier-console/internal/courier-service/core/ports/driven"
)

// positionPayload is what the companion location source returns.
type positionPayload struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy"`
	Timestamp      int64   `json:"timestamp"` // unix milliseconds
}

// HTTPProvider polls a companion location source (typically the agent's
// phone) for the current device position. Every call is a fresh request;
// the caller's context carries the read timeout.
type HTTPProvider struct {
	sourceURL string
	client    *http.Client
}

var _ driven.IGeolocationProvider = (*HTTPProvider)(nil)

func NewHTTPProvider(sourceURL string) *HTTPProvider {
	return &HTTPProvider{
		sourceURL: sourceURL,
		client:    &http.Client{},
	}
}

func (p *HTTPProvider) CurrentPosition(ctx context.Context) (driven.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.sourceURL, nil)
	if err != nil {
		return driven.Position{}, &driven.PositionError{Code: driven.PositionUnknown, Err: err}
	}
	// Zero staleness tolerance: the fix must be live, not cached.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return driven.Position{}, &driven.PositionError{Code: driven.PositionTimeout, Err: err}
		}
		return driven.Position{}, &driven.PositionError{Code: driven.PositionUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return driven.Position{}, &driven.PositionError{
			Code: driven.PositionPermissionDenied,
			Err:  fmt.Errorf("location source returned %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return driven.Position{}, &driven.PositionError{
			Code: driven.PositionUnavailable,
			Err:  fmt.Errorf("location source returned %d", resp.StatusCode),
		}
	}

	var payload positionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return driven.Position{}, &driven.PositionError{Code: driven.PositionUnavailable, Err: err}
	}

	if payload.Latitude < -90 || payload.Latitude > 90 ||
		payload.Longitude < -180 || payload.Longitude > 180 {
		return driven.Position{}, &driven.PositionError{
			Code: driven.PositionUnavailable,
			Err:  fmt.Errorf("coordinates out of range: %f, %f", payload.Latitude, payload.Longitude),
		}
	}

	fixedAt := time.Now()
	if payload.Timestamp > 0 {
		fixedAt = time.UnixMilli(payload.Timestamp)
	}

	return driven.Position{
		Latitude:       payload.Latitude,
		Longitude:      payload.Longitude,
		AccuracyMeters: payload.AccuracyMeters,
		Timestamp:      fixedAt,
	}, nil
}
