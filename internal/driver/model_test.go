package driver

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewDriver_DefaultsActive(t *testing.T) {
	d := New(uuid.New(), "Suresh", "9876543210", "hash", []string{"Warangal"})

	if !d.IsActive {
		t.Fatal("expected new driver to be active")
	}
	if d.LastSeen != nil || d.CurrentLat != nil {
		t.Fatal("expected no position before first heartbeat")
	}
}

func TestUpdatePosition(t *testing.T) {
	d := New(uuid.New(), "Suresh", "9876543210", "hash", nil)
	at := time.Now().UTC()

	d.UpdatePosition(17.3850, 78.4867, at)

	if d.CurrentLat == nil || *d.CurrentLat != 17.3850 {
		t.Fatal("latitude not recorded")
	}
	if d.LastSeen == nil || !d.LastSeen.Equal(at) {
		t.Fatal("last_seen not recorded")
	}
}

func TestIsOnline(t *testing.T) {
	d := New(uuid.New(), "Suresh", "9876543210", "hash", nil)

	if d.IsOnline(5 * time.Minute) {
		t.Fatal("driver with no heartbeat must be offline")
	}

	recent := time.Now().Add(-1 * time.Minute)
	d.LastSeen = &recent
	if !d.IsOnline(5 * time.Minute) {
		t.Fatal("driver seen 1m ago must be online")
	}

	stale := time.Now().Add(-10 * time.Minute)
	d.LastSeen = &stale
	if d.IsOnline(5 * time.Minute) {
		t.Fatal("driver seen 10m ago must be offline")
	}
}

func TestCoversCity(t *testing.T) {
	d := New(uuid.New(), "Suresh", "9876543210", "hash", []string{"Warangal", "Hanamkonda"})

	if !d.CoversCity("Warangal") {
		t.Fatal("expected coverage for Warangal")
	}
	if d.CoversCity("Hyderabad") {
		t.Fatal("unexpected coverage for Hyderabad")
	}
}
