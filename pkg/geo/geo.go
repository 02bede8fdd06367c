// Package geo provides great-circle distance math for assignment scoring
// and delivery ETA estimates.
package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// Average urban courier speed used for rough ETA estimates.
	defaultSpeedKmh = 25.0
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// HaversineKm returns the great-circle distance between two points in
// kilometres.
func HaversineKm(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ETAMinutes estimates travel time in minutes for the given distance at
// the default courier speed. Returns at least 1 for any positive distance.
func ETAMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	minutes := distanceKm / defaultSpeedKmh * 60
	if minutes < 1 {
		return 1
	}
	return int(math.Round(minutes))
}

// ValidCoordinates reports whether lat/lon fall within WGS84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
