package models

import "time"

// PublicSnapshot is the sanitized view returned on the public tracking
// endpoint. It carries no identifiers, no monetary fields and no tokens.
type PublicSnapshot struct {
	Status   LoadStatus   `json:"status"`
	Stops    []PublicStop `json:"stops"`
	LastPing *PingSummary `json:"lastPing,omitempty"`
}

// PublicStop exposes only the stop facts a viewer needs
type PublicStop struct {
	Type       StopType   `json:"type"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	WindowFrom *time.Time `json:"windowFrom,omitempty"`
	WindowTo   *time.Time `json:"windowTo,omitempty"`
}

// PingSummary is the reduced location surfaced publicly. Coordinates are
// rounded to two decimal places (roughly a kilometer) before they leave the
// service.
type PingSummary struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}
