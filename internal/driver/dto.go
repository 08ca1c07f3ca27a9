package driver

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Driver struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	AdminID        uuid.UUID      `db:"admin_id" json:"admin_id"`
	Name           string         `db:"name" json:"name"`
	Phone          string         `db:"phone" json:"phone"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	AssignedCities pq.StringArray `db:"assigned_cities" json:"assigned_cities"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CurrentLat     *float64       `db:"current_lat" json:"current_lat,omitempty"`
	CurrentLng     *float64       `db:"current_lng" json:"current_lng,omitempty"`
	LastSeen       *time.Time     `db:"last_seen" json:"last_seen,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

type LoginRequest struct {
	Phone    string `json:"phone_number" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Driver      *DriverProfile `json:"driver"`
}

type DriverProfile struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Cities []string  `json:"cities"`
}

// HeartbeatRequest carries a GPS fix. The coordinates are pointers so a
// reading on the equator or prime meridian is not mistaken for a missing
// field by the required check.
type HeartbeatRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type CreateDriverRequest struct {
	Name     string   `json:"name" binding:"required"`
	Phone    string   `json:"phone" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Cities   []string `json:"cities"`
}

type UpdateDriverRequest struct {
	Name     string   `json:"name" binding:"required"`
	Phone    string   `json:"phone" binding:"required"`
	Password string   `json:"password"`
	Cities   []string `json:"cities"`
	IsActive bool     `json:"is_active"`
}
