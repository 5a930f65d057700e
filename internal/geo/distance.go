package geo

import (
	"math"
	"strconv"
)

// UnreachableKm is returned by DistanceKm when any coordinate is missing.
// Callers must treat distances this large as "unknown", never as a measurement.
const UnreachableKm = 9999

// moveThresholdDeg is the angular delta treated as significant movement,
// roughly 100 meters at the equator. Intentionally a constant: the check
// ignores the caller-supplied kilometer threshold and is not
// latitude-corrected. Known approximation, not a bug.
const moveThresholdDeg = 0.001

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371

// DistanceKm returns the great-circle (haversine) distance between two
// points in kilometers. A zero or NaN coordinate counts as missing (the
// backend uses zero as its missing marker) and yields UnreachableKm.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if missing(lat1) || missing(lon1) || missing(lat2) || missing(lon2) {
		return UnreachableKm
	}

	radLat1 := deg2rad(lat1)
	radLat2 := deg2rad(lat2)
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// HasMovedSignificantly reports whether the position changed enough to be
// worth a refresh. Incomplete coordinates fail open (treated as moved).
// thresholdKm is accepted for interface compatibility; the comparison uses
// the fixed moveThresholdDeg angular delta.
func HasMovedSignificantly(prevLat, prevLon, curLat, curLon, thresholdKm float64) bool {
	_ = thresholdKm
	if missing(prevLat) || missing(prevLon) || missing(curLat) || missing(curLon) {
		return true
	}

	latDiff := math.Abs(prevLat - curLat)
	lonDiff := math.Abs(prevLon - curLon)

	return latDiff > moveThresholdDeg || lonDiff > moveThresholdDeg
}

// FormatCoordinate renders a coordinate with six decimals, or "N/A" for NaN.
func FormatCoordinate(coord float64) string {
	if math.IsNaN(coord) {
		return "N/A"
	}
	return strconv.FormatFloat(coord, 'f', 6, 64)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func missing(v float64) bool {
	return v == 0 || math.IsNaN(v)
}
