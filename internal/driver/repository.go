package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, admin_id, name, phone, password_hash, assigned_cities, is_active, current_lat, current_lng, last_seen, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, d *Driver) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Driver, error)
	GetByPhone(ctx context.Context, ext sqlx.ExtContext, phone string) (*Driver, error)
	Update(ctx context.Context, ext sqlx.ExtContext, d *Driver) error
	UpdatePosition(ctx context.Context, ext sqlx.ExtContext, d *Driver) error
	Delete(ctx context.Context, ext sqlx.ExtContext, id, adminID uuid.UUID) error
	ListByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) ([]*Driver, error)
	ListActive(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) ([]*Driver, error)
	ListAll(ctx context.Context, ext sqlx.ExtContext) ([]*Driver, error)
}

type driverRepository struct{}

func NewRepository() Repository {
	return &driverRepository{}
}

func (r *driverRepository) Create(ctx context.Context, ext sqlx.ExtContext, d *Driver) error {
	const query = `INSERT INTO drivers (id, admin_id, name, phone, password_hash, assigned_cities, is_active, current_lat, current_lng, last_seen, created_at, updated_at)
		VALUES (:id, :admin_id, :name, :phone, :password_hash, :assigned_cities, :is_active, :current_lat, :current_lng, :last_seen, :created_at, :updated_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, d)
	return err
}

func (r *driverRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Driver, error) {
	var d Driver
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE id = $1`, columns)
	if err := sqlx.GetContext(ctx, ext, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepository) GetByPhone(ctx context.Context, ext sqlx.ExtContext, phone string) (*Driver, error) {
	var d Driver
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE phone = $1`, columns)
	if err := sqlx.GetContext(ctx, ext, &d, query, phone); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepository) Update(ctx context.Context, ext sqlx.ExtContext, d *Driver) error {
	const query = `UPDATE drivers SET name = :name, phone = :phone, password_hash = :password_hash,
		assigned_cities = :assigned_cities, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	_, err := sqlx.NamedExecContext(ctx, ext, query, d)
	return err
}

func (r *driverRepository) UpdatePosition(ctx context.Context, ext sqlx.ExtContext, d *Driver) error {
	const query = `UPDATE drivers SET current_lat = :current_lat, current_lng = :current_lng,
		last_seen = :last_seen, updated_at = :updated_at
		WHERE id = :id`
	_, err := sqlx.NamedExecContext(ctx, ext, query, d)
	return err
}

func (r *driverRepository) Delete(ctx context.Context, ext sqlx.ExtContext, id, adminID uuid.UUID) error {
	res, err := ext.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1 AND admin_id = $2`, id, adminID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("driver %s not found for this admin", id)
	}
	return nil
}

func (r *driverRepository) ListByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) ([]*Driver, error) {
	var drivers []*Driver
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE admin_id = $1 ORDER BY name ASC`, columns)
	if err := sqlx.SelectContext(ctx, ext, &drivers, query, adminID); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepository) ListActive(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) ([]*Driver, error) {
	var drivers []*Driver
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE admin_id = $1 AND is_active ORDER BY name ASC`, columns)
	if err := sqlx.SelectContext(ctx, ext, &drivers, query, adminID); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepository) ListAll(ctx context.Context, ext sqlx.ExtContext) ([]*Driver, error) {
	var drivers []*Driver
	query := fmt.Sprintf(`SELECT %s FROM drivers ORDER BY created_at ASC`, columns)
	if err := sqlx.SelectContext(ctx, ext, &drivers, query); err != nil {
		return nil, err
	}
	return drivers, nil
}
