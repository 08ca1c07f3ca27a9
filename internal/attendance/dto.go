package attendance

import (
	"time"

	"github.com/google/uuid"
)

// DailyStat is one frozen attendance row, written by the nightly sync.
// A (driver_id, date) pair has at most one row; re-running the sync
// overwrites it in place.
type DailyStat struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	DriverID        uuid.UUID  `db:"driver_id" json:"driver_id"`
	Date            time.Time  `db:"date" json:"date"`
	FirstActivity   *time.Time `db:"first_activity" json:"first_activity,omitempty"`
	LastActivity    *time.Time `db:"last_activity" json:"last_activity,omitempty"`
	DurationSeconds int64      `db:"duration_seconds" json:"duration_seconds"`
	Deliveries      int        `db:"deliveries" json:"deliveries"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// DayRecord is one calendar day of a driver's attendance as the admin
// panel renders it.
type DayRecord struct {
	Date            string     `json:"date"`
	FirstActivity   *time.Time `json:"first_activity,omitempty"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	Duration        string     `json:"duration"`
	Deliveries      int        `json:"deliveries"`
}

type Summary struct {
	TotalHours          float64 `json:"total_hours"`
	ActiveDays          int     `json:"active_days"`
	TotalDeliveries     int     `json:"total_deliveries"`
	AvgHoursPerDay      float64 `json:"avg_hours_per_day"`
	AvgDeliveriesPerDay float64 `json:"avg_deliveries_per_day"`
}

// Report is a range of day records plus their roll-up, newest day first.
type Report struct {
	DriverID uuid.UUID    `json:"driver_id"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Days     []*DayRecord `json:"days"`
	Summary  Summary      `json:"summary"`
}
