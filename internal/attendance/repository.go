package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Upsert(ctx context.Context, ext sqlx.ExtContext, stat *DailyStat) error
	ListRange(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*DailyStat, error)
}

type statsRepository struct{}

func NewRepository() Repository {
	return &statsRepository{}
}

// Upsert writes one frozen day, keyed by (driver_id, date). A rerun for
// the same day replaces the previous numbers instead of duplicating the
// row.
func (r *statsRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, stat *DailyStat) error {
	const query = `INSERT INTO daily_stats
		(id, driver_id, date, first_activity, last_activity, duration_seconds, deliveries, created_at, updated_at)
		VALUES (:id, :driver_id, :date, :first_activity, :last_activity, :duration_seconds, :deliveries, :created_at, :updated_at)
		ON CONFLICT (driver_id, date) DO UPDATE SET
			first_activity = EXCLUDED.first_activity,
			last_activity = EXCLUDED.last_activity,
			duration_seconds = EXCLUDED.duration_seconds,
			deliveries = EXCLUDED.deliveries,
			updated_at = EXCLUDED.updated_at`
	_, err := sqlx.NamedExecContext(ctx, ext, query, stat)
	return err
}

func (r *statsRepository) ListRange(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*DailyStat, error) {
	stats := []*DailyStat{}
	const query = `SELECT id, driver_id, date, first_activity, last_activity, duration_seconds, deliveries, created_at, updated_at
		FROM daily_stats
		WHERE driver_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC`
	err := sqlx.SelectContext(ctx, ext, &stats, query, driverID, from, to)
	return stats, err
}
