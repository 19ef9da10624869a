package models

import "time"

// ReportSource identifies where a location report originated
type ReportSource string

const (
	SourceDriverApp ReportSource = "driver_app"
	SourceManual    ReportSource = "manual"
	SourceELD       ReportSource = "eld"
)

// Valid reports whether s is one of the known sources
func (s ReportSource) Valid() bool {
	switch s {
	case SourceDriverApp, SourceManual, SourceELD:
		return true
	}
	return false
}

// LocationReport represents a single GPS report from a driver for a load.
// Reports are append-only: once persisted they are never mutated.
type LocationReport struct {
	ID         int64        `json:"id" db:"id"`
	LoadID     string       `json:"loadId" db:"load_id"`
	DriverID   string       `json:"driverId" db:"driver_id"`
	Latitude   float64      `json:"latitude" db:"lat"`
	Longitude  float64      `json:"longitude" db:"lng"`
	AccuracyM  *float64     `json:"accuracyMeters,omitempty" db:"accuracy_m"`
	SpeedMPH   *float64     `json:"speedMph,omitempty" db:"speed_mph"`
	Heading    *float64     `json:"heading,omitempty" db:"heading"`
	Source     ReportSource `json:"source" db:"source"`
	RecordedAt time.Time    `json:"recordedAt" db:"recorded_at"`
	ReceivedAt time.Time    `json:"receivedAt" db:"received_at"`

	// Plausible is false for reports that failed the speed screen.
	// They are kept for audit but never used as a speed baseline and
	// never drive geofence transitions.
	Plausible bool `json:"plausible" db:"plausible"`
}

// SubmitReportRequest is the driver-facing submission payload.
// Coordinates are pointers so that a literal 0 survives the required check.
type SubmitReportRequest struct {
	Latitude  *float64     `json:"latitude" binding:"required"`
	Longitude *float64     `json:"longitude" binding:"required"`
	AccuracyM *float64     `json:"accuracyMeters,omitempty"`
	SpeedMPH  *float64     `json:"speedMph,omitempty"`
	Heading   *float64     `json:"heading,omitempty"`
	Source    ReportSource `json:"source,omitempty"`
	Timestamp string       `json:"timestamp" binding:"required"`
}

// SubmitReportResponse is returned on accepted submissions
type SubmitReportResponse struct {
	ReportID  int64 `json:"reportId"`
	Plausible bool  `json:"plausible"`
}
