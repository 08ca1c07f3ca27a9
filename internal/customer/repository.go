package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const columns = `id, admin_id, name, phone, city, landmark, pincode, verified_lat, verified_lng, created_at, updated_at`
const recordColumns = `id, customer_id, order_id, status, driver_name, recorded_at`
const changeColumns = `id, admin_id, driver_id, driver_name, customer_id, request_type, old_value, new_value, status, created_at`

type Repository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, c *Customer) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Customer, error)
	Update(ctx context.Context, ext sqlx.ExtContext, c *Customer) error
	Search(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, search string) ([]*Customer, error)
	CountByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) (int, error)

	AppendRecord(ctx context.Context, ext sqlx.ExtContext, rec *Record) error
	LatestRecords(ctx context.Context, ext sqlx.ExtContext, customerIDs []uuid.UUID) (map[uuid.UUID]*Record, error)
	ListRecords(ctx context.Context, ext sqlx.ExtContext, customerID uuid.UUID) ([]*Record, error)

	CreateChangeRequest(ctx context.Context, ext sqlx.ExtContext, cr *ChangeRequest) error
	GetChangeRequest(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*ChangeRequest, error)
	ListChangeRequests(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status string) ([]*ChangeRequest, error)
	UpdateChangeRequestStatus(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, status string) error

	UpsertCity(ctx context.Context, ext sqlx.ExtContext, name string) error
	ListCities(ctx context.Context, ext sqlx.ExtContext) ([]*City, error)
}

type customerRepository struct{}

func NewRepository() Repository {
	return &customerRepository{}
}

func (r *customerRepository) Create(ctx context.Context, ext sqlx.ExtContext, c *Customer) error {
	const query = `INSERT INTO customers (id, admin_id, name, phone, city, landmark, pincode, verified_lat, verified_lng, created_at, updated_at)
		VALUES (:id, :admin_id, :name, :phone, :city, :landmark, :pincode, :verified_lat, :verified_lng, :created_at, :updated_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, c)
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Customer, error) {
	var c Customer
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, columns)
	if err := sqlx.GetContext(ctx, ext, &c, query, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, ext sqlx.ExtContext, c *Customer) error {
	const query = `UPDATE customers SET name = :name, phone = :phone, city = :city, landmark = :landmark,
		pincode = :pincode, verified_lat = :verified_lat, verified_lng = :verified_lng, updated_at = :updated_at
		WHERE id = :id`
	_, err := sqlx.NamedExecContext(ctx, ext, query, c)
	return err
}

func (r *customerRepository) Search(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, search string) ([]*Customer, error) {
	var customers []*Customer
	if search == "" {
		query := fmt.Sprintf(`SELECT %s FROM customers WHERE admin_id = $1 ORDER BY created_at DESC`, columns)
		if err := sqlx.SelectContext(ctx, ext, &customers, query, adminID); err != nil {
			return nil, err
		}
		return customers, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM customers
		WHERE admin_id = $1 AND (name ILIKE $2 OR phone ILIKE $2)
		ORDER BY created_at DESC`, columns)
	if err := sqlx.SelectContext(ctx, ext, &customers, query, adminID, "%"+search+"%"); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) CountByAdmin(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, ext, &count, `SELECT COUNT(*) FROM customers WHERE admin_id = $1`, adminID)
	return count, err
}

// --- Records ---

func (r *customerRepository) AppendRecord(ctx context.Context, ext sqlx.ExtContext, rec *Record) error {
	const query = `INSERT INTO customer_records (id, customer_id, order_id, status, driver_name, recorded_at)
		VALUES (:id, :customer_id, :order_id, :status, :driver_name, :recorded_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, rec)
	return err
}

// LatestRecords returns the newest history entry per customer, used to
// derive each customer's current status for list filtering.
func (r *customerRepository) LatestRecords(ctx context.Context, ext sqlx.ExtContext, customerIDs []uuid.UUID) (map[uuid.UUID]*Record, error) {
	if len(customerIDs) == 0 {
		return map[uuid.UUID]*Record{}, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`SELECT DISTINCT ON (customer_id) %s
		FROM customer_records WHERE customer_id IN (?)
		ORDER BY customer_id, recorded_at DESC`, recordColumns), customerIDs)
	if err != nil {
		return nil, err
	}
	query = ext.Rebind(query)

	var records []*Record
	if err := sqlx.SelectContext(ctx, ext, &records, query, args...); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]*Record, len(records))
	for _, rec := range records {
		out[rec.CustomerID] = rec
	}
	return out, nil
}

func (r *customerRepository) ListRecords(ctx context.Context, ext sqlx.ExtContext, customerID uuid.UUID) ([]*Record, error) {
	var records []*Record
	query := fmt.Sprintf(`SELECT %s FROM customer_records WHERE customer_id = $1 ORDER BY recorded_at ASC`, recordColumns)
	if err := sqlx.SelectContext(ctx, ext, &records, query, customerID); err != nil {
		return nil, err
	}
	return records, nil
}

// --- Change requests ---

func (r *customerRepository) CreateChangeRequest(ctx context.Context, ext sqlx.ExtContext, cr *ChangeRequest) error {
	const query = `INSERT INTO change_requests (id, admin_id, driver_id, driver_name, customer_id, request_type, old_value, new_value, status, created_at)
		VALUES (:id, :admin_id, :driver_id, :driver_name, :customer_id, :request_type, :old_value, :new_value, :status, :created_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, cr)
	return err
}

func (r *customerRepository) GetChangeRequest(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*ChangeRequest, error) {
	var cr ChangeRequest
	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE id = $1`, changeColumns)
	if err := sqlx.GetContext(ctx, ext, &cr, query, id); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *customerRepository) ListChangeRequests(ctx context.Context, ext sqlx.ExtContext, adminID uuid.UUID, status string) ([]*ChangeRequest, error) {
	var requests []*ChangeRequest
	if status == "" {
		query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE admin_id = $1 ORDER BY created_at DESC`, changeColumns)
		if err := sqlx.SelectContext(ctx, ext, &requests, query, adminID); err != nil {
			return nil, err
		}
		return requests, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE admin_id = $1 AND status = $2 ORDER BY created_at DESC`, changeColumns)
	if err := sqlx.SelectContext(ctx, ext, &requests, query, adminID, status); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *customerRepository) UpdateChangeRequestStatus(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, status string) error {
	_, err := ext.ExecContext(ctx, `UPDATE change_requests SET status = $2 WHERE id = $1`, id, status)
	return err
}

// --- Cities ---

func (r *customerRepository) UpsertCity(ctx context.Context, ext sqlx.ExtContext, name string) error {
	_, err := ext.ExecContext(ctx, `INSERT INTO cities (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

func (r *customerRepository) ListCities(ctx context.Context, ext sqlx.ExtContext) ([]*City, error) {
	var cities []*City
	if err := sqlx.SelectContext(ctx, ext, &cities, `SELECT name FROM cities ORDER BY name ASC`); err != nil {
		return nil, err
	}
	return cities, nil
}
