package models

import "time"

// LoadStatus is the coarse lifecycle of a shipment
type LoadStatus string

const (
	LoadPending   LoadStatus = "pending"
	LoadInTransit LoadStatus = "in_transit"
	LoadDelivered LoadStatus = "delivered"
	LoadCancelled LoadStatus = "cancelled"
)

// Load is the minimal shipment surface this service reads: enough for link
// expiry and public snapshots. Load management itself lives elsewhere.
type Load struct {
	ID          string     `json:"id" db:"id"`
	Status      LoadStatus `json:"status" db:"status"`
	OriginCity  string     `json:"originCity" db:"origin_city"`
	OriginState string     `json:"originState" db:"origin_state"`
	DestCity    string     `json:"destCity" db:"dest_city"`
	DestState   string     `json:"destState" db:"dest_state"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
