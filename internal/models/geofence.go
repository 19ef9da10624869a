package models

import "time"

// Classification of a report relative to a stop's geofence
type Classification string

const (
	ClassInside  Classification = "inside"
	ClassOutside Classification = "outside"
	ClassUnknown Classification = "unknown"
)

// GeofenceState is the hysteresis state for one (stop, driver) pair. Created
// lazily on the first classified report and mutated only by the transition
// engine until the stop is terminal.
type GeofenceState struct {
	StopID             string         `json:"stopId" db:"stop_id"`
	DriverID           string         `json:"driverId" db:"driver_id"`
	LastClassification Classification `json:"lastClassification" db:"last_classification"`
	InsideStreak       int            `json:"insideStreak" db:"inside_streak"`
	OutsideStreak      int            `json:"outsideStreak" db:"outside_streak"`
	LastArriveAttempt  *time.Time     `json:"lastArriveAttemptAt,omitempty" db:"last_arrive_attempt_at"`
	LastDepartAttempt  *time.Time     `json:"lastDepartAttemptAt,omitempty" db:"last_depart_attempt_at"`
	UpdatedAt          time.Time      `json:"updatedAt" db:"updated_at"`
}
