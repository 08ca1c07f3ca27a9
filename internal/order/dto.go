package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDelivered  Status = "DELIVERED"
)

// statusPriority orders a driver's worklist: the order being carried
// right now comes first, queued work next, finished work last.
var statusPriority = map[Status]int{
	StatusInProgress: 0,
	StatusPending:    1,
	StatusDelivered:  2,
}

type Order struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	AdminID            uuid.UUID  `db:"admin_id" json:"admin_id"`
	CustomerID         uuid.UUID  `db:"customer_id" json:"customer_id"`
	CustomerName       string     `db:"customer_name" json:"customer_name"`
	City               string     `db:"city" json:"city"`
	Landmark           string     `db:"landmark" json:"landmark"`
	Phone              string     `db:"phone" json:"phone"`
	Status             Status     `db:"status" json:"status"`
	AssignedDriverID   *uuid.UUID `db:"assigned_driver_id" json:"assigned_driver_id,omitempty"`
	AssignedDriverName string     `db:"assigned_driver_name" json:"assigned_driver_name,omitempty"`
	VerifiedLat        *float64   `db:"verified_lat" json:"verified_lat,omitempty"`
	VerifiedLng        *float64   `db:"verified_lng" json:"verified_lng,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	AssignedAt         *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	StartedAt          *time.Time `db:"started_at" json:"started_at,omitempty"`
	DeliveredAt        *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
}

type CreateOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// AssignRequest picks a driver for a pending order. Leaving driver_id
// empty asks the dispatcher to choose one automatically.
type AssignRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteRequest pins the handover GPS fix. Pointers keep zero-valued
// coordinates from tripping the required check.
type CompleteRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// WorklistItem is an order as the driver's app sees it, annotated with
// the straight-line distance from the driver's last known position.
type WorklistItem struct {
	*Order
	DistanceKM float64 `json:"distance_km"`
}
