package models

import "time"

// StopType distinguishes pickups from dropoffs
type StopType string

const (
	StopPickup  StopType = "pickup"
	StopDropoff StopType = "dropoff"
)

// Stop is a scheduled pickup or dropoff on a load. ArrivedAt/DepartedAt are
// set exactly once, either automatically by the geofence engine or manually
// by the driver; a manual update marks the stop terminal for automatic
// purposes via ManualOverride.
type Stop struct {
	ID              string     `json:"id" db:"id"`
	LoadID          string     `json:"loadId" db:"load_id"`
	Sequence        int        `json:"sequence" db:"sequence"`
	Type            StopType   `json:"type" db:"type"`
	City            string     `json:"city" db:"city"`
	State           string     `json:"state" db:"state"`
	Latitude        *float64   `json:"latitude,omitempty" db:"lat"`
	Longitude       *float64   `json:"longitude,omitempty" db:"lng"`
	GeofenceRadiusM float64    `json:"geofenceRadiusMeters" db:"geofence_radius_m"`
	WindowFrom      *time.Time `json:"windowFrom,omitempty" db:"window_from"`
	WindowTo        *time.Time `json:"windowTo,omitempty" db:"window_to"`
	ArrivedAt       *time.Time `json:"arrivedAt,omitempty" db:"arrived_at"`
	DepartedAt      *time.Time `json:"departedAt,omitempty" db:"departed_at"`
	ManualOverride  bool       `json:"manualOverride" db:"manual_override"`
}

// HasCoordinate reports whether the stop has a registered geofence center
func (s *Stop) HasCoordinate() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Terminal reports whether the stop is closed to automatic transitions
func (s *Stop) Terminal() bool {
	if s.ManualOverride {
		return true
	}
	return s.ArrivedAt != nil && s.DepartedAt != nil
}

// ManualStopUpdateRequest sets arrival and/or departure by hand
type ManualStopUpdateRequest struct {
	ArrivedAt  *time.Time `json:"arrivedAt,omitempty"`
	DepartedAt *time.Time `json:"departedAt,omitempty"`
}
