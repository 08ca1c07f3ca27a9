package order

import (
	"time"

	"github.com/google/uuid"

	domainerrors "gasflow/internal/errors"
)

func New(adminID uuid.UUID, customerID uuid.UUID, customerName, city, landmark, phone string) *Order {
	return &Order{
		ID:           uuid.New(),
		AdminID:      adminID,
		CustomerID:   customerID,
		CustomerName: customerName,
		City:         city,
		Landmark:     landmark,
		Phone:        phone,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

// AssignTo attaches a driver to a pending order. Reassignment before the
// driver has started is allowed; an order already underway is not.
func (o *Order) AssignTo(driverID uuid.UUID, driverName string, at time.Time) error {
	if o.Status != StatusPending {
		return domainerrors.OrderInvalidTransition(string(o.Status), "assign")
	}
	o.AssignedDriverID = &driverID
	o.AssignedDriverName = driverName
	o.AssignedAt = &at
	return nil
}

// Accept moves an assigned order into IN_PROGRESS when the driver picks
// it up.
func (o *Order) Accept(driverID uuid.UUID, at time.Time) error {
	if o.AssignedDriverID == nil || *o.AssignedDriverID != driverID {
		return domainerrors.OrderNotAssigned()
	}
	if o.Status != StatusPending {
		return domainerrors.OrderInvalidTransition(string(o.Status), "accept")
	}
	o.Status = StatusInProgress
	o.StartedAt = &at
	return nil
}

// Complete marks the order delivered and pins the GPS fix taken at the
// customer's doorstep.
func (o *Order) Complete(driverID uuid.UUID, lat, lng float64, at time.Time) error {
	if o.AssignedDriverID == nil || *o.AssignedDriverID != driverID {
		return domainerrors.OrderNotAssigned()
	}
	if o.Status != StatusInProgress {
		return domainerrors.OrderInvalidTransition(string(o.Status), "complete")
	}
	o.Status = StatusDelivered
	o.DeliveredAt = &at
	o.VerifiedLat = &lat
	o.VerifiedLng = &lng
	return nil
}
