package driver

import (
	"time"

	"github.com/google/uuid"
)

func New(adminID uuid.UUID, name, phone, passwordHash string, cities []string) *Driver {
	now := time.Now().UTC()
	return &Driver{
		ID:             uuid.New(),
		AdminID:        adminID,
		Name:           name,
		Phone:          phone,
		PasswordHash:   passwordHash,
		AssignedCities: cities,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (d *Driver) UpdatePosition(lat, lng float64, at time.Time) {
	d.CurrentLat = &lat
	d.CurrentLng = &lng
	d.LastSeen = &at
	d.UpdatedAt = at
}

// IsOnline reports whether the driver's last heartbeat arrived within the
// online window (five minutes by default).
func (d *Driver) IsOnline(window time.Duration) bool {
	if d.LastSeen == nil {
		return false
	}
	return time.Since(*d.LastSeen) < window
}

func (d *Driver) CoversCity(city string) bool {
	for _, c := range d.AssignedCities {
		if c == city {
			return true
		}
	}
	return false
}
