package geolocation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courier-console/internal/courier-service/core/ports/driven"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionError(t *testing.T, err error) *driven.PositionError {
	t.Helper()
	var perr *driven.PositionError
	require.True(t, errors.As(err, &perr), "expected a classified position error, got %v", err)
	return perr
}

func TestHTTPProviderCurrentPosition(t *testing.T) {
	t.Run("parses a live fix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
			w.Write([]byte(`{"latitude": 19.0760, "longitude": 72.8777, "accuracy": 12.5, "timestamp": 1748779200000}`))
		}))
		defer server.Close()

		pos, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 19.0760, pos.Latitude)
		assert.Equal(t, 72.8777, pos.Longitude)
		assert.Equal(t, 12.5, pos.AccuracyMeters)
		assert.Equal(t, time.UnixMilli(1748779200000).Unix(), pos.Timestamp.Unix())
	})

	t.Run("missing timestamp falls back to now", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"latitude": 19.0, "longitude": 72.8}`))
		}))
		defer server.Close()

		pos, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), pos.Timestamp, 5*time.Second)
	})

	t.Run("forbidden source is a permission error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		assert.Equal(t, driven.PositionPermissionDenied, positionError(t, err).Code)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		assert.Equal(t, driven.PositionUnavailable, positionError(t, err).Code)
	})

	t.Run("coordinates out of range are rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"latitude": 123.4, "longitude": 72.8}`))
		}))
		defer server.Close()

		_, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		assert.Equal(t, driven.PositionUnavailable, positionError(t, err).Code)
	})

	t.Run("slow source times out", func(t *testing.T) {
		block := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer server.Close()
		defer close(block)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewHTTPProvider(server.URL).CurrentPosition(ctx)
		assert.Equal(t, driven.PositionTimeout, positionError(t, err).Code)
	})

	t.Run("unreachable source is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		_, err := NewHTTPProvider(server.URL).CurrentPosition(context.Background())
		assert.Equal(t, driven.PositionUnavailable, positionError(t, err).Code)
	})
}
