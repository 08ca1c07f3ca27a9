package tracking

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventLogin  EventKind = "LOGIN"
	EventLogout EventKind = "LOGOUT"
)

// LocationPing is one GPS heartbeat from a driver's device, reported on a
// roughly five-minute timer while the app is foregrounded. Pings are
// append-only and never mutated.
type LocationPing struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DriverID  uuid.UUID `db:"driver_id" json:"driver_id"`
	Lat       float64   `db:"lat" json:"lat"`
	Lng       float64   `db:"lng" json:"lng"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// AuditEvent is a driver session signal written at login and logout.
type AuditEvent struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DriverID  uuid.UUID `db:"driver_id" json:"driver_id"`
	Kind      EventKind `db:"kind" json:"kind"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

type PathPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TrackData is the live-map payload for one driver: freshest position,
// recent movement path and the customer markers of assigned orders.
type TrackData struct {
	CurrentPos *PathPoint    `json:"current_pos"`
	Path       []PathPoint   `json:"path"`
	Markers    []OrderMarker `json:"markers"`
}

type OrderMarker struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Status   string  `json:"status"`
	Customer string  `json:"customer"`
	Address  string  `json:"address"`
}
