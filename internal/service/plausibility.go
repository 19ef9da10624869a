package service

import (
	"time"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/spatial"
)

// PlausibilityFilter screens a validated report against the driver's last
// accepted report. Reports implying impossible movement are soft-rejected:
// kept for audit, excluded from the speed baseline and from geofence
// classification.
type PlausibilityFilter struct {
	MaxSpeedMPH float64
}

// NewPlausibilityFilter creates a filter with the given speed ceiling
func NewPlausibilityFilter(maxSpeedMPH float64) *PlausibilityFilter {
	return &PlausibilityFilter{MaxSpeedMPH: maxSpeedMPH}
}

// Plausible reports whether moving from prev to (lat, lng) by recordedAt is
// physically possible. With no previous accepted report every report is
// plausible.
func (f *PlausibilityFilter) Plausible(prev *models.LocationReport, lat, lng float64, recordedAt time.Time) bool {
	if prev == nil {
		return true
	}
	meters := spatial.HaversineDistance(prev.Latitude, prev.Longitude, lat, lng)
	elapsed := recordedAt.Sub(prev.RecordedAt)
	return spatial.ImpliedSpeedMPH(meters, elapsed) <= f.MaxSpeedMPH
}
