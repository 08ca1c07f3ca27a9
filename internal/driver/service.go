package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/auth"
	"gasflow/internal/common"
	domainerrors "gasflow/internal/errors"
	"gasflow/internal/jwt"
	"gasflow/internal/redis"
	"gasflow/internal/tracking"
)

type Service interface {
	Login(ctx context.Context, phone, password string) (*LoginResponse, error)
	Logout(ctx context.Context, driverID uuid.UUID) error
	Heartbeat(ctx context.Context, driverID uuid.UUID, lat, lng float64) error
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)
	GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Driver, error)
	Create(ctx context.Context, adminID uuid.UUID, req CreateDriverRequest) (*Driver, error)
	Update(ctx context.Context, id, adminID uuid.UUID, req UpdateDriverRequest) (*Driver, error)
	Delete(ctx context.Context, id, adminID uuid.UUID) error
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*Driver, error)
	ListActive(ctx context.Context, adminID uuid.UUID) ([]*Driver, error)
	ListAll(ctx context.Context) ([]*Driver, error)
}

type service struct {
	repo      Repository
	tracking  tracking.Repository
	db        *sqlx.DB
	cache     *redis.DriverLocationCache
	jwt       *jwt.Service
}

func NewService(repo Repository, trackingRepo tracking.Repository, db *sqlx.DB, cache *redis.DriverLocationCache, jwtService *jwt.Service) Service {
	return &service{
		repo:     repo,
		tracking: trackingRepo,
		db:       db,
		cache:    cache,
		jwt:      jwtService,
	}
}

// -------------------------------------------------------------------------------------------------
// Login verifies credentials and appends a LOGIN audit event. The event
// feeds the attendance engine's first/last-activity display.
func (s *service) Login(ctx context.Context, phone, password string) (*LoginResponse, error) {
	d, err := s.repo.GetByPhone(ctx, s.db, phone)
	if err != nil || !auth.CheckPassword(password, d.PasswordHash) {
		return nil, domainerrors.InvalidCredentials()
	}
	if !d.IsActive {
		return nil, domainerrors.DriverInactive()
	}

	token, err := s.jwt.GenerateToken(d.ID.String(), jwt.RoleDriver)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to issue token", err)
	}

	event := &tracking.AuditEvent{
		ID:        uuid.New(),
		DriverID:  d.ID,
		Kind:      tracking.EventLogin,
		Timestamp: time.Now().UTC(),
	}
	if err := s.tracking.InsertEvent(ctx, s.db, event); err != nil {
		return nil, domainerrors.NewInternal("failed to record login event", err)
	}

	return &LoginResponse{
		AccessToken: token,
		Driver: &DriverProfile{
			ID:     d.ID,
			Name:   d.Name,
			Cities: d.AssignedCities,
		},
	}, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Logout(ctx context.Context, driverID uuid.UUID) error {
	event := &tracking.AuditEvent{
		ID:        uuid.New(),
		DriverID:  driverID,
		Kind:      tracking.EventLogout,
		Timestamp: time.Now().UTC(),
	}
	if err := s.tracking.InsertEvent(ctx, s.db, event); err != nil {
		return domainerrors.NewInternal("failed to record logout event", err)
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
// Heartbeat ingests one GPS ping: appends to the immutable ping log,
// refreshes the driver's last-seen position and primes the cache.
func (s *service) Heartbeat(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if err := common.ValidateLatLng(lat, lng); err != nil {
		return domainerrors.NewValidation(err.Error())
	}

	d, err := s.repo.GetByID(ctx, s.db, driverID)
	if err != nil {
		return domainerrors.DriverNotFound(driverID.String())
	}

	now := time.Now().UTC()
	ping := &tracking.LocationPing{
		ID:        uuid.New(),
		DriverID:  driverID,
		Lat:       lat,
		Lng:       lng,
		Timestamp: now,
	}
	if err := s.tracking.InsertPing(ctx, s.db, ping); err != nil {
		return domainerrors.NewInternal("failed to record ping", err)
	}

	d.UpdatePosition(lat, lng, now)
	if err := s.repo.UpdatePosition(ctx, s.db, d); err != nil {
		return domainerrors.NewInternal("failed to update driver position", err)
	}

	// Best effort; tracking reads fall back to the drivers row.
	_ = s.cache.Set(ctx, driverID.String(), common.NewLocation(lat, lng))

	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Driver, error) {
	d, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, domainerrors.DriverNotFound(id.String())
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
// GetForAdmin resolves a driver and checks tenancy: admins only see their
// own fleet.
func (s *service) GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Driver, error) {
	d, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil || d.AdminID != adminID {
		return nil, domainerrors.DriverNotFound(id.String())
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Create(ctx context.Context, adminID uuid.UUID, req CreateDriverRequest) (*Driver, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to hash password", err)
	}

	d := New(adminID, req.Name, req.Phone, hash, req.Cities)
	if err := s.repo.Create(ctx, s.db, d); err != nil {
		return nil, domainerrors.NewInternal("failed to create driver", err)
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Update(ctx context.Context, id, adminID uuid.UUID, req UpdateDriverRequest) (*Driver, error) {
	d, err := s.GetForAdmin(ctx, id, adminID)
	if err != nil {
		return nil, err
	}

	d.Name = req.Name
	d.Phone = req.Phone
	d.AssignedCities = req.Cities
	d.IsActive = req.IsActive
	d.UpdatedAt = time.Now().UTC()

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, domainerrors.NewInternal("failed to hash password", err)
		}
		d.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, s.db, d); err != nil {
		return nil, domainerrors.NewInternal("failed to update driver", err)
	}
	return d, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Delete(ctx context.Context, id, adminID uuid.UUID) error {
	if err := s.repo.Delete(ctx, s.db, id, adminID); err != nil {
		return domainerrors.DriverNotFound(id.String())
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]*Driver, error) {
	return s.repo.ListByAdmin(ctx, s.db, adminID)
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListActive(ctx context.Context, adminID uuid.UUID) ([]*Driver, error) {
	return s.repo.ListActive(ctx, s.db, adminID)
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListAll(ctx context.Context) ([]*Driver, error) {
	return s.repo.ListAll(ctx, s.db)
}
