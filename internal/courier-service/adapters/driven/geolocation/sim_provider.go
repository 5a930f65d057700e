package geolocation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"courier-console/internal/courier-service/core/ports/driven"
)

// SimProvider fakes a device by random-walking around a start point.
// Development and demo use only.
type SimProvider struct {
	mu  sync.Mutex
	lat float64
	lon float64
}

var _ driven.IGeolocationProvider = (*SimProvider)(nil)

func NewSimProvider(startLat, startLon float64) *SimProvider {
	return &SimProvider{
		lat: startLat,
		lon: startLon,
	}
}

func (p *SimProvider) CurrentPosition(ctx context.Context) (driven.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Simulate small movement
	p.lat += (rand.Float64() - 0.5) / 1000
	p.lon += (rand.Float64() - 0.5) / 1000

	return driven.Position{
		Latitude:       p.lat,
		Longitude:      p.lon,
		AccuracyMeters: 5.0,
		Timestamp:      time.Now(),
	}, nil
}
