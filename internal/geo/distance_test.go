package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		d := DistanceKm(19.0760, 72.8777, 19.0760, 72.8777)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("symmetry", func(t *testing.T) {
		d1 := DistanceKm(19.0760, 72.8777, 28.7041, 77.1025)
		d2 := DistanceKm(28.7041, 77.1025, 19.0760, 72.8777)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("mumbai fixture", func(t *testing.T) {
		d := DistanceKm(19.0760, 72.8777, 19.0860, 72.8677)
		assert.Greater(t, d, 1.0)
		assert.Less(t, d, 3.0)
	})

	t.Run("NaN input returns sentinel", func(t *testing.T) {
		d := DistanceKm(math.NaN(), 72.8777, 19.0860, 72.8677)
		assert.Equal(t, float64(UnreachableKm), d)
		assert.False(t, math.IsNaN(d))
	})

	t.Run("zero coordinate counts as missing", func(t *testing.T) {
		assert.Equal(t, float64(UnreachableKm), DistanceKm(0, 72.8777, 19.0860, 72.8677))
		assert.Equal(t, float64(UnreachableKm), DistanceKm(19.0760, 0, 19.0860, 72.8677))
	})
}

func TestHasMovedSignificantly(t *testing.T) {
	t.Run("missing coordinates fail open", func(t *testing.T) {
		assert.True(t, HasMovedSignificantly(0, 0, 19.0760, 72.8777, 0.1))
		assert.True(t, HasMovedSignificantly(19.0760, 72.8777, math.NaN(), 72.8777, 0.1))
	})

	t.Run("below threshold", func(t *testing.T) {
		assert.False(t, HasMovedSignificantly(19.0760, 72.8777, 19.0765, 72.8772, 0.1))
	})

	t.Run("above threshold", func(t *testing.T) {
		assert.True(t, HasMovedSignificantly(19.0760, 72.8777, 19.0790, 72.8777, 0.1))
	})

	t.Run("threshold argument is ignored", func(t *testing.T) {
		// Fixed angular threshold, independent of the km parameter.
		assert.False(t, HasMovedSignificantly(19.0760, 72.8777, 19.0765, 72.8772, 0.0001))
	})
}

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "19.076000", FormatCoordinate(19.076))
	assert.Equal(t, "-72.877700", FormatCoordinate(-72.8777))
	assert.Equal(t, "N/A", FormatCoordinate(math.NaN()))
}
