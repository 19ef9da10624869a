package spatial

import (
	"math"
	"time"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	MetersPerMile     = 1609.344
)

// HaversineDistance calculates the great-circle distance between two points
// in meters using the Haversine formula
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// ImpliedSpeedMPH returns the speed in miles per hour implied by covering
// meters in elapsed. A non-positive elapsed time with any movement yields
// +Inf so callers treat it as implausible; zero movement yields 0.
func ImpliedSpeedMPH(meters float64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		if meters == 0 {
			return 0
		}
		return math.Inf(1)
	}
	miles := meters / MetersPerMile
	return miles / elapsed.Hours()
}
