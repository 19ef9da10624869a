package models

import "time"

// ActivityKind enumerates the events this subsystem emits
type ActivityKind string

const (
	ActivityAutoArrival     ActivityKind = "auto_arrival"
	ActivityAutoDeparture   ActivityKind = "auto_departure"
	ActivityManualArrival   ActivityKind = "manual_arrival"
	ActivityManualDeparture ActivityKind = "manual_departure"
	ActivityLoadDelivered   ActivityKind = "load_delivered"
)

// ActivityEvent is the audit record written for every automatic transition
// and manual override
type ActivityEvent struct {
	ID        int64        `json:"id" db:"id"`
	LoadID    string       `json:"loadId" db:"load_id"`
	StopID    string       `json:"stopId,omitempty" db:"stop_id"`
	DriverID  string       `json:"driverId,omitempty" db:"driver_id"`
	Kind      ActivityKind `json:"kind" db:"kind"`
	Detail    string       `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}
