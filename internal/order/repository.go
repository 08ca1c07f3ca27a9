package order

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	domainerrors "gasflow/internal/errors"
)

type Repository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, o *Order) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, ext sqlx.ExtContext, o *Order) error
	ListByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status Status) ([]*Order, error)
	ListForWorklist(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, deliveredSince time.Time) ([]*Order, error)
	ListByCustomer(ctx context.Context, ext sqlx.ExtContext, customerID uuid.UUID) ([]*Order, error)
	CountOpenByDriver(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID) (int, error)
	CountDeliveredInWindow(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) (int, error)
	ListDeliveredTimes(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]time.Time, error)
	CountByAdminAndStatus(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status Status) (int, error)
	CountUnassignedByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) (int, error)
	CountDeliveredByAdminInWindow(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, from, to time.Time) (int, error)
	ListDeliveredByAdminInWindow(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, from, to time.Time) ([]*Order, error)
}

type orderRepository struct{}

func NewRepository() Repository {
	return &orderRepository{}
}

const columns = `id, admin_id, customer_id, customer_name, city, landmark, phone, status,
	assigned_driver_id, assigned_driver_name, verified_lat, verified_lng,
	created_at, assigned_at, started_at, delivered_at`

func (r *orderRepository) Create(ctx context.Context, ext sqlx.ExtContext, o *Order) error {
	query := `INSERT INTO orders (` + columns + `)
		VALUES (:id, :admin_id, :customer_id, :customer_name, :city, :landmark, :phone, :status,
			:assigned_driver_id, :assigned_driver_name, :verified_lat, :verified_lng,
			:created_at, :assigned_at, :started_at, :delivered_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, o)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Order, error) {
	var o Order
	query := `SELECT ` + columns + ` FROM orders WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext, &o, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.OrderNotFound(id.String())
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, ext sqlx.ExtContext, o *Order) error {
	query := `UPDATE orders SET status = :status,
		assigned_driver_id = :assigned_driver_id, assigned_driver_name = :assigned_driver_name,
		verified_lat = :verified_lat, verified_lng = :verified_lng,
		assigned_at = :assigned_at, started_at = :started_at, delivered_at = :delivered_at
		WHERE id = :id`
	_, err := sqlx.NamedExecContext(ctx, ext, query, o)
	return err
}

func (r *orderRepository) ListByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status Status) ([]*Order, error) {
	orders := []*Order{}
	if status != "" {
		query := `SELECT ` + columns + ` FROM orders WHERE admin_id = $1 AND status = $2 ORDER BY created_at DESC`
		err := sqlx.SelectContext(ctx, ext, &orders, query, adminID, status)
		return orders, err
	}
	query := `SELECT ` + columns + ` FROM orders WHERE admin_id = $1 ORDER BY created_at DESC`
	err := sqlx.SelectContext(ctx, ext, &orders, query, adminID)
	return orders, err
}

// ListForWorklist returns the driver's open orders plus anything they
// delivered since the given cutoff, so the app can show today's finished
// drops at the bottom of the list.
func (r *orderRepository) ListForWorklist(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, deliveredSince time.Time) ([]*Order, error) {
	orders := []*Order{}
	query := `SELECT ` + columns + ` FROM orders
		WHERE assigned_driver_id = $1
		  AND (status IN ('PENDING', 'IN_PROGRESS') OR (status = 'DELIVERED' AND delivered_at >= $2))
		ORDER BY created_at ASC`
	err := sqlx.SelectContext(ctx, ext, &orders, query, driverID, deliveredSince)
	return orders, err
}

func (r *orderRepository) ListByCustomer(ctx context.Context, ext sqlx.ExtContext, customerID uuid.UUID) ([]*Order, error) {
	orders := []*Order{}
	query := `SELECT ` + columns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	err := sqlx.SelectContext(ctx, ext, &orders, query, customerID)
	return orders, err
}

func (r *orderRepository) CountOpenByDriver(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE assigned_driver_id = $1 AND status IN ('PENDING', 'IN_PROGRESS')`
	err := sqlx.GetContext(ctx, ext, &count, query, driverID)
	return count, err
}

func (r *orderRepository) CountDeliveredInWindow(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders
		WHERE assigned_driver_id = $1 AND status = 'DELIVERED' AND delivered_at BETWEEN $2 AND $3`
	err := sqlx.GetContext(ctx, ext, &count, query, driverID, from, to)
	return count, err
}

// ListDeliveredTimes returns delivery completion instants only, for
// bucketing delivery counts into calendar days without loading full rows.
func (r *orderRepository) ListDeliveredTimes(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	times := []time.Time{}
	query := `SELECT delivered_at FROM orders
		WHERE assigned_driver_id = $1 AND status = 'DELIVERED' AND delivered_at BETWEEN $2 AND $3
		ORDER BY delivered_at ASC`
	err := sqlx.SelectContext(ctx, ext, &times, query, driverID, from, to)
	return times, err
}

func (r *orderRepository) CountByAdminAndStatus(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status Status) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE admin_id = $1 AND status = $2`
	err := sqlx.GetContext(ctx, ext, &count, query, adminID, status)
	return count, err
}

// CountUnassignedByAdmin counts the pending orders no driver has been
// picked for yet.
func (r *orderRepository) CountUnassignedByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE admin_id = $1 AND status = 'PENDING' AND assigned_driver_id IS NULL`
	err := sqlx.GetContext(ctx, ext, &count, query, adminID)
	return count, err
}

func (r *orderRepository) CountDeliveredByAdminInWindow(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders
		WHERE admin_id = $1 AND status = 'DELIVERED' AND delivered_at BETWEEN $2 AND $3`
	err := sqlx.GetContext(ctx, ext, &count, query, adminID, from, to)
	return count, err
}

func (r *orderRepository) ListDeliveredByAdminInWindow(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, from, to time.Time) ([]*Order, error) {
	orders := []*Order{}
	query := `SELECT ` + columns + ` FROM orders
		WHERE admin_id = $1 AND status = 'DELIVERED' AND delivered_at BETWEEN $2 AND $3
		ORDER BY delivered_at ASC`
	err := sqlx.SelectContext(ctx, ext, &orders, query, adminID, from, to)
	return orders, err
}
