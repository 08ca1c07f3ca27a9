package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/driver"
	domainerrors "gasflow/internal/errors"
)

type Service interface {
	Create(ctx context.Context, adminID uuid.UUID, req CreateCustomerRequest) (*Customer, error)
	GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Customer, error)
	ListWithStatus(ctx context.Context, adminID uuid.UUID, filter, search string) ([]*CustomerView, error)
	AddCity(ctx context.Context, name string) error
	ListCities(ctx context.Context) ([]*City, error)

	SubmitChangeRequest(ctx context.Context, driverID uuid.UUID, req SubmitChangeRequest) (*ChangeRequest, error)
	ListChangeRequests(ctx context.Context, adminID uuid.UUID, status string) ([]*ChangeRequest, error)
	ResolveChangeRequest(ctx context.Context, adminID, requestID uuid.UUID, approve bool) error
}

type service struct {
	repo    Repository
	drivers driver.Repository
	db      *sqlx.DB
}

func NewService(repo Repository, drivers driver.Repository, db *sqlx.DB) Service {
	return &service{repo: repo, drivers: drivers, db: db}
}

// -------------------------------------------------------------------------------------------------
func (s *service) Create(ctx context.Context, adminID uuid.UUID, req CreateCustomerRequest) (*Customer, error) {
	now := time.Now().UTC()
	c := &Customer{
		ID:        uuid.New(),
		AdminID:   adminID,
		Name:      req.Name,
		Phone:     req.Phone,
		City:      req.City,
		Landmark:  req.Landmark,
		Pincode:   req.Pincode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, c); err != nil {
		return nil, domainerrors.NewInternal("failed to create customer", err)
	}
	return c, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil || c.AdminID != adminID {
		return nil, domainerrors.CustomerNotFound(id.String())
	}
	return c, nil
}

// -------------------------------------------------------------------------------------------------
// ListWithStatus returns the admin's customers annotated with the status
// of the newest history entry, optionally filtered by that status.
func (s *service) ListWithStatus(ctx context.Context, adminID uuid.UUID, filter, search string) ([]*CustomerView, error) {
	customers, err := s.repo.Search(ctx, s.db, adminID, search)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to list customers", err)
	}

	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	latest, err := s.repo.LatestRecords(ctx, s.db, ids)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load customer records", err)
	}

	views := make([]*CustomerView, 0, len(customers))
	for _, c := range customers {
		status := "NO ORDERS"
		if rec, ok := latest[c.ID]; ok {
			status = rec.Status
		}
		if filter != "" && filter != "all" && status != filter {
			continue
		}
		views = append(views, &CustomerView{Customer: c, CurrentStatus: status})
	}
	return views, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) AddCity(ctx context.Context, name string) error {
	if name == "" {
		return domainerrors.NewValidation("city name is required")
	}
	if err := s.repo.UpsertCity(ctx, s.db, name); err != nil {
		return domainerrors.NewInternal("failed to add city", err)
	}
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListCities(ctx context.Context) ([]*City, error) {
	return s.repo.ListCities(ctx, s.db)
}

// -------------------------------------------------------------------------------------------------
// SubmitChangeRequest queues a driver-reported correction. The old value
// is snapshotted at submission time so reviewers see what it replaced.
func (s *service) SubmitChangeRequest(ctx context.Context, driverID uuid.UUID, req SubmitChangeRequest) (*ChangeRequest, error) {
	if req.Category != RequestAddress && req.Category != RequestPhone {
		return nil, domainerrors.NewValidation("category must be ADDRESS or PHONE")
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, domainerrors.NewValidation("invalid customer id")
	}

	d, err := s.drivers.GetByID(ctx, s.db, driverID)
	if err != nil {
		return nil, domainerrors.DriverNotFound(driverID.String())
	}
	c, err := s.repo.GetByID(ctx, s.db, customerID)
	if err != nil {
		return nil, domainerrors.CustomerNotFound(customerID.String())
	}

	oldValue := c.Landmark
	if req.Category == RequestPhone {
		oldValue = c.Phone
	}

	cr := &ChangeRequest{
		ID:         uuid.New(),
		AdminID:    d.AdminID,
		DriverID:   d.ID,
		DriverName: d.Name,
		CustomerID: c.ID,
		Type:       req.Category,
		OldValue:   oldValue,
		NewValue:   req.NewDetails,
		Status:     ChangePending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateChangeRequest(ctx, s.db, cr); err != nil {
		return nil, domainerrors.NewInternal("failed to create change request", err)
	}
	return cr, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListChangeRequests(ctx context.Context, adminID uuid.UUID, status string) ([]*ChangeRequest, error) {
	return s.repo.ListChangeRequests(ctx, s.db, adminID, status)
}

// -------------------------------------------------------------------------------------------------
// ResolveChangeRequest applies or rejects a pending correction. Approval
// writes the new value onto the customer in the same transaction as the
// status flip.
func (s *service) ResolveChangeRequest(ctx context.Context, adminID, requestID uuid.UUID, approve bool) error {
	cr, err := s.repo.GetChangeRequest(ctx, s.db, requestID)
	if err != nil || cr.AdminID != adminID {
		return domainerrors.NewNotFound("change request", requestID.String())
	}
	if cr.Status != ChangePending {
		return domainerrors.NewConflict("change request is already resolved")
	}

	if !approve {
		if err := s.repo.UpdateChangeRequestStatus(ctx, s.db, requestID, ChangeRejected); err != nil {
			return domainerrors.NewInternal("failed to reject change request", err)
		}
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	c, err := s.repo.GetByID(ctx, tx, cr.CustomerID)
	if err != nil {
		return domainerrors.CustomerNotFound(cr.CustomerID.String())
	}
	switch cr.Type {
	case RequestAddress:
		c.Landmark = cr.NewValue
	case RequestPhone:
		c.Phone = cr.NewValue
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, tx, c); err != nil {
		return domainerrors.NewInternal("failed to apply change request", err)
	}
	if err := s.repo.UpdateChangeRequestStatus(ctx, tx, requestID, ChangeApproved); err != nil {
		return domainerrors.NewInternal("failed to approve change request", err)
	}

	return tx.Commit()
}
