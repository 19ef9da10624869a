package models

import "time"

// LinkRole distinguishes the two token audiences for a load
type LinkRole string

const (
	RolePublic LinkRole = "public"
	RoleDriver LinkRole = "driver"
)

// Valid reports whether r is a known role
func (r LinkRole) Valid() bool {
	return r == RolePublic || r == RoleDriver
}

// TrackingLink binds an opaque token to a load for one role. Rows are
// indexed by the SHA-256 digest of the token; the token column itself is
// only ever compared constant-time after the row is fetched.
type TrackingLink struct {
	Digest    string    `json:"-" db:"digest"`
	Token     string    `json:"token" db:"token"`
	LoadID    string    `json:"loadId" db:"load_id"`
	Role      LinkRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IssueLinkRequest asks for a new tracking or driver link
type IssueLinkRequest struct {
	Role LinkRole `json:"role" binding:"required"`
}
