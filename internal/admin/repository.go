package admin

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	domainerrors "gasflow/internal/errors"
)

type Repository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, a *Admin) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Admin, error)
	GetByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*Admin, error)
	UpdatePassword(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, passwordHash string) error

	UpsertOTP(ctx context.Context, ext sqlx.ExtContext, p *PendingOTP) error
	GetOTP(ctx context.Context, ext sqlx.ExtContext, email string, purpose OTPPurpose) (*PendingOTP, error)
	DeleteOTP(ctx context.Context, ext sqlx.ExtContext, email string, purpose OTPPurpose) error
}

type adminRepository struct{}

func NewRepository() Repository {
	return &adminRepository{}
}

func (r *adminRepository) Create(ctx context.Context, ext sqlx.ExtContext, a *Admin) error {
	const query = `INSERT INTO admins (id, name, email, password_hash, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :created_at, :updated_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, query, a)
	return err
}

func (r *adminRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) (*Admin, error) {
	var a Admin
	const query = `SELECT id, name, email, password_hash, created_at, updated_at FROM admins WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.AdminNotFound(id.String())
		}
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*Admin, error) {
	var a Admin
	const query = `SELECT id, name, email, password_hash, created_at, updated_at FROM admins WHERE email = $1`
	if err := sqlx.GetContext(ctx, ext, &a, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.AdminNotFound(email)
		}
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) UpdatePassword(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, passwordHash string) error {
	const query = `UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := ext.ExecContext(ctx, query, passwordHash, id)
	return err
}

// UpsertOTP keeps at most one pending code per (email, purpose); asking
// for a new code invalidates the previous one.
func (r *adminRepository) UpsertOTP(ctx context.Context, ext sqlx.ExtContext, p *PendingOTP) error {
	const query = `INSERT INTO pending_otps (id, email, name, password_hash, otp, purpose, expires_at, created_at)
		VALUES (:id, :email, :name, :password_hash, :otp, :purpose, :expires_at, :created_at)
		ON CONFLICT (email, purpose) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			otp = EXCLUDED.otp,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`
	_, err := sqlx.NamedExecContext(ctx, ext, query, p)
	return err
}

func (r *adminRepository) GetOTP(ctx context.Context, ext sqlx.ExtContext, email string, purpose OTPPurpose) (*PendingOTP, error) {
	var p PendingOTP
	const query = `SELECT id, email, name, password_hash, otp, purpose, expires_at, created_at
		FROM pending_otps WHERE email = $1 AND purpose = $2`
	if err := sqlx.GetContext(ctx, ext, &p, query, email, purpose); err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.InvalidOTP()
		}
		return nil, err
	}
	return &p, nil
}

func (r *adminRepository) DeleteOTP(ctx context.Context, ext sqlx.ExtContext, email string, purpose OTPPurpose) error {
	const query = `DELETE FROM pending_otps WHERE email = $1 AND purpose = $2`
	_, err := ext.ExecContext(ctx, query, email, purpose)
	return err
}
