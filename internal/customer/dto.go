package customer

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AdminID     uuid.UUID  `db:"admin_id" json:"admin_id"`
	Name        string     `db:"name" json:"name"`
	Phone       string     `db:"phone" json:"phone"`
	City        string     `db:"city" json:"city"`
	Landmark    string     `db:"landmark" json:"landmark"`
	Pincode     string     `db:"pincode" json:"pincode"`
	VerifiedLat *float64   `db:"verified_lat" json:"verified_lat,omitempty"`
	VerifiedLng *float64   `db:"verified_lng" json:"verified_lng,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Record is one entry in a customer's order-history log. The log is
// append-only and keyed by order; the customer's "current status" is the
// newest entry, not a mutable field.
type Record struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	Status     string    `db:"status" json:"status"`
	DriverName string    `db:"driver_name" json:"driver_name"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

type RequestType string

const (
	RequestAddress RequestType = "ADDRESS"
	RequestPhone   RequestType = "PHONE"
)

// ChangeRequest is a driver-submitted correction to a customer's address
// or phone number, queued for admin review.
type ChangeRequest struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	AdminID    uuid.UUID   `db:"admin_id" json:"admin_id"`
	DriverID   uuid.UUID   `db:"driver_id" json:"driver_id"`
	DriverName string      `db:"driver_name" json:"driver_name"`
	CustomerID uuid.UUID   `db:"customer_id" json:"customer_id"`
	Type       RequestType `db:"request_type" json:"request_type"`
	OldValue   string      `db:"old_value" json:"old_value"`
	NewValue   string      `db:"new_value" json:"new_value"`
	Status     string      `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

const (
	ChangePending  = "PENDING"
	ChangeApproved = "APPROVED"
	ChangeRejected = "REJECTED"
)

type City struct {
	Name string `db:"name" json:"name"`
}

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	City     string `json:"city" binding:"required"`
	Landmark string `json:"landmark" binding:"required"`
	Pincode  string `json:"pincode"`
}

type CustomerView struct {
	*Customer
	CurrentStatus string `json:"current_status"`
}

type SubmitChangeRequest struct {
	CustomerID string      `json:"customer_id" binding:"required"`
	Category   RequestType `json:"category" binding:"required"`
	NewDetails string      `json:"new_details" binding:"required"`
}
