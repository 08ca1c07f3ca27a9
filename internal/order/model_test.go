package order

import (
	"testing"
	"time"

	"github.com/google/uuid"

	domainerrors "gasflow/internal/errors"
)

func newPendingOrder() *Order {
	return New(uuid.New(), uuid.New(), "Ravi Kumar", "Warangal", "near the clock tower", "9876543210")
}

func assignedOrder(driverID uuid.UUID) *Order {
	o := newPendingOrder()
	_ = o.AssignTo(driverID, "Suresh", time.Now().UTC())
	return o
}

func TestNewOrder_StartsPendingUnassigned(t *testing.T) {
	o := newPendingOrder()

	if o.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", o.Status)
	}
	if o.AssignedDriverID != nil {
		t.Fatal("expected no assigned driver")
	}
}

func TestAssignTo_SetsDriverAndTimestamp(t *testing.T) {
	o := newPendingOrder()
	driverID := uuid.New()

	if err := o.AssignTo(driverID, "Suresh", time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.AssignedDriverID == nil || *o.AssignedDriverID != driverID {
		t.Fatal("driver not set")
	}
	if o.AssignedAt == nil {
		t.Fatal("assigned_at not set")
	}
	if o.Status != StatusPending {
		t.Fatalf("assignment must not change status, got %s", o.Status)
	}
}

func TestAssignTo_ReassignBeforeStartAllowed(t *testing.T) {
	o := assignedOrder(uuid.New())
	other := uuid.New()

	if err := o.AssignTo(other, "Mahesh", time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *o.AssignedDriverID != other {
		t.Fatal("reassignment did not take")
	}
}

func TestAssignTo_AfterStartFails(t *testing.T) {
	driverID := uuid.New()
	o := assignedOrder(driverID)
	_ = o.Accept(driverID, time.Now().UTC())

	err := o.AssignTo(uuid.New(), "Mahesh", time.Now().UTC())
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestAccept_ByAssignedDriver(t *testing.T) {
	driverID := uuid.New()
	o := assignedOrder(driverID)

	if err := o.Accept(driverID, time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", o.Status)
	}
	if o.StartedAt == nil {
		t.Fatal("started_at not set")
	}
}

func TestAccept_ByOtherDriverFails(t *testing.T) {
	o := assignedOrder(uuid.New())

	err := o.Accept(uuid.New(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestAccept_Unassigned_Fails(t *testing.T) {
	o := newPendingOrder()
	if err := o.Accept(uuid.New(), time.Now().UTC()); err == nil {
		t.Fatal("expected error")
	}
}

func TestComplete_RecordsDeliveryAndGPSFix(t *testing.T) {
	driverID := uuid.New()
	o := assignedOrder(driverID)
	_ = o.Accept(driverID, time.Now().UTC())

	at := time.Now().UTC()
	if err := o.Complete(driverID, 17.3850, 78.4867, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", o.Status)
	}
	if o.DeliveredAt == nil || !o.DeliveredAt.Equal(at) {
		t.Fatal("delivered_at not set")
	}
	if o.VerifiedLat == nil || *o.VerifiedLat != 17.3850 {
		t.Fatal("verified position not pinned")
	}
}

func TestComplete_WithoutAccept_Fails(t *testing.T) {
	driverID := uuid.New()
	o := assignedOrder(driverID)

	err := o.Complete(driverID, 17.3850, 78.4867, time.Now().UTC())
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestComplete_Twice_Fails(t *testing.T) {
	driverID := uuid.New()
	o := assignedOrder(driverID)
	_ = o.Accept(driverID, time.Now().UTC())
	_ = o.Complete(driverID, 17.3850, 78.4867, time.Now().UTC())

	if err := o.Complete(driverID, 17.3850, 78.4867, time.Now().UTC()); err == nil {
		t.Fatal("expected error on double completion")
	}
}

func TestStatusPriority_OrdersWorklist(t *testing.T) {
	if statusPriority[StatusInProgress] >= statusPriority[StatusPending] {
		t.Fatal("in-progress must sort before pending")
	}
	if statusPriority[StatusPending] >= statusPriority[StatusDelivered] {
		t.Fatal("pending must sort before delivered")
	}
}
