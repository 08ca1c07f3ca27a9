package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const pingColumns = `id, driver_id, lat, lng, timestamp`
const eventColumns = `id, driver_id, kind, timestamp`

type Repository interface {
	InsertPing(ctx context.Context, ext sqlx.ExtContext, p *LocationPing) error
	InsertEvent(ctx context.Context, ext sqlx.ExtContext, e *AuditEvent) error
	ListPings(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*LocationPing, error)
	ListEvents(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, kind EventKind, from, to time.Time) ([]*AuditEvent, error)
	ListPathSince(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, since time.Time) ([]*LocationPing, error)
}

type trackingRepository struct{}

func NewRepository() Repository {
	return &trackingRepository{}
}

func (r *trackingRepository) InsertPing(ctx context.Context, ext sqlx.ExtContext, p *LocationPing) error {
	const query = `INSERT INTO driver_location_pings (id, driver_id, lat, lng, timestamp)
		VALUES (:id, :driver_id, :lat, :lng, :timestamp)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, p)
	return err
}

func (r *trackingRepository) InsertEvent(ctx context.Context, ext sqlx.ExtContext, e *AuditEvent) error {
	const query = `INSERT INTO driver_audit_events (id, driver_id, kind, timestamp)
		VALUES (:id, :driver_id, :kind, :timestamp)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, e)
	return err
}

func (r *trackingRepository) ListPings(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*LocationPing, error) {
	var pings []*LocationPing
	query := fmt.Sprintf(`SELECT %s FROM driver_location_pings
		WHERE driver_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC`, pingColumns)
	if err := sqlx.SelectContext(ctx, ext, &pings, query, driverID, from, to); err != nil {
		return nil, err
	}
	return pings, nil
}

func (r *trackingRepository) ListEvents(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, kind EventKind, from, to time.Time) ([]*AuditEvent, error) {
	var events []*AuditEvent
	query := fmt.Sprintf(`SELECT %s FROM driver_audit_events
		WHERE driver_id = $1 AND kind = $2 AND timestamp >= $3 AND timestamp <= $4
		ORDER BY timestamp ASC`, eventColumns)
	if err := sqlx.SelectContext(ctx, ext, &events, query, driverID, kind, from, to); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *trackingRepository) ListPathSince(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, since time.Time) ([]*LocationPing, error) {
	var pings []*LocationPing
	query := fmt.Sprintf(`SELECT %s FROM driver_location_pings
		WHERE driver_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC`, pingColumns)
	if err := sqlx.SelectContext(ctx, ext, &pings, query, driverID, since); err != nil {
		return nil, err
	}
	return pings, nil
}
