package order

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/common"
	"gasflow/internal/customer"
	"gasflow/internal/driver"
	domainerrors "gasflow/internal/errors"
	"gasflow/internal/localtime"
)

type Service interface {
	Create(ctx context.Context, adminID uuid.UUID, req CreateOrderRequest) (*Order, error)
	GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Order, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, status Status) ([]*Order, error)
	Assign(ctx context.Context, adminID, orderID uuid.UUID, req AssignRequest) (*Order, error)

	Worklist(ctx context.Context, driverID uuid.UUID) ([]*WorklistItem, error)
	Accept(ctx context.Context, driverID, orderID uuid.UUID) (*Order, error)
	Complete(ctx context.Context, driverID, orderID uuid.UUID, req CompleteRequest) (*Order, error)
}

type service struct {
	repo      Repository
	customers customer.Repository
	drivers   driver.Repository
	db        *sqlx.DB
	cal       localtime.Calendar
	logger    *slog.Logger
}

func NewService(repo Repository, customers customer.Repository, drivers driver.Repository, db *sqlx.DB, cal localtime.Calendar, logger *slog.Logger) Service {
	return &service{repo: repo, customers: customers, drivers: drivers, db: db, cal: cal, logger: logger}
}

// -------------------------------------------------------------------------------------------------
// Create opens a new pending order for a customer and appends the first
// entry to the customer's history log in the same transaction.
func (s *service) Create(ctx context.Context, adminID uuid.UUID, req CreateOrderRequest) (*Order, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, domainerrors.NewValidation("invalid customer id")
	}

	c, err := s.customers.GetByID(ctx, s.db, customerID)
	if err != nil || c.AdminID != adminID {
		return nil, domainerrors.CustomerNotFound(customerID.String())
	}

	o := New(adminID, c.ID, c.Name, c.City, c.Landmark, c.Phone)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.repo.Create(ctx, tx, o); err != nil {
		return nil, domainerrors.NewInternal("failed to create order", err)
	}
	if err := s.appendRecord(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domainerrors.NewInternal("failed to commit order", err)
	}
	return o, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) GetForAdmin(ctx context.Context, id, adminID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil || o.AdminID != adminID {
		return nil, domainerrors.OrderNotFound(id.String())
	}
	return o, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ListByAdmin(ctx context.Context, adminID uuid.UUID, status Status) ([]*Order, error) {
	return s.repo.ListByAdmin(ctx, s.db, adminID, status)
}

// -------------------------------------------------------------------------------------------------
// Assign attaches a driver to a pending order. With no driver in the
// request the dispatcher picks the active driver covering the order's
// city who has the fewest open orders.
func (s *service) Assign(ctx context.Context, adminID, orderID uuid.UUID, req AssignRequest) (*Order, error) {
	o, err := s.GetForAdmin(ctx, orderID, adminID)
	if err != nil {
		return nil, err
	}

	var d *driver.Driver
	if req.DriverID != "" {
		driverID, err := uuid.Parse(req.DriverID)
		if err != nil {
			return nil, domainerrors.NewValidation("invalid driver id")
		}
		d, err = s.drivers.GetByID(ctx, s.db, driverID)
		if err != nil || d.AdminID != adminID {
			return nil, domainerrors.DriverNotFound(req.DriverID)
		}
		if !d.IsActive {
			return nil, domainerrors.DriverInactive()
		}
	} else {
		d, err = s.pickDriver(ctx, adminID, o.City)
		if err != nil {
			return nil, err
		}
	}

	if err := o.AssignTo(d.ID, d.Name, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, s.db, o); err != nil {
		return nil, domainerrors.NewInternal("failed to assign order", err)
	}

	s.logger.Info("order assigned",
		slog.String("order_id", o.ID.String()),
		slog.String("driver_id", d.ID.String()),
		slog.String("city", o.City))
	return o, nil
}

// pickDriver returns the least-loaded active driver covering the city.
// Load is the count of PENDING and IN_PROGRESS orders; ties go to the
// driver listed first.
func (s *service) pickDriver(ctx context.Context, adminID uuid.UUID, city string) (*driver.Driver, error) {
	drivers, err := s.drivers.ListActive(ctx, s.db, adminID)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to list drivers", err)
	}

	var best *driver.Driver
	bestLoad := 0
	for _, d := range drivers {
		if !d.CoversCity(city) {
			continue
		}
		load, err := s.repo.CountOpenByDriver(ctx, s.db, d.ID)
		if err != nil {
			return nil, domainerrors.NewInternal("failed to count driver load", err)
		}
		if best == nil || load < bestLoad {
			best = d
			bestLoad = load
		}
	}
	if best == nil {
		return nil, domainerrors.NewConflict("no active driver covers city " + city)
	}
	return best, nil
}

// -------------------------------------------------------------------------------------------------
// Worklist returns the driver's orders sorted for the mobile app: the
// in-progress order first, then pending ones nearest-first, then today's
// completed deliveries.
func (s *service) Worklist(ctx context.Context, driverID uuid.UUID) ([]*WorklistItem, error) {
	d, err := s.drivers.GetByID(ctx, s.db, driverID)
	if err != nil {
		return nil, domainerrors.DriverNotFound(driverID.String())
	}

	todayStart := s.cal.DayStart(s.cal.Today())
	orders, err := s.repo.ListForWorklist(ctx, s.db, driverID, todayStart)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load worklist", err)
	}

	items := make([]*WorklistItem, len(orders))
	for i, o := range orders {
		dist := common.FarAway
		if d.CurrentLat != nil && d.CurrentLng != nil {
			dist = common.DistanceOrFar(*d.CurrentLat, *d.CurrentLng, o.VerifiedLat, o.VerifiedLng)
		}
		items[i] = &WorklistItem{Order: o, DistanceKM: dist}
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := statusPriority[items[i].Status], statusPriority[items[j].Status]
		if pi != pj {
			return pi < pj
		}
		return items[i].DistanceKM < items[j].DistanceKM
	})
	return items, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) Accept(ctx context.Context, driverID, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Accept(driverID, time.Now().UTC()); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.repo.Update(ctx, tx, o); err != nil {
		return nil, domainerrors.NewInternal("failed to update order", err)
	}
	if err := s.appendRecord(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domainerrors.NewInternal("failed to commit order", err)
	}
	return o, nil
}

// -------------------------------------------------------------------------------------------------
// Complete closes the delivery. The GPS fix taken at handover is written
// onto the order and becomes the customer's verified location for future
// distance sorting.
func (s *service) Complete(ctx context.Context, driverID, orderID uuid.UUID, req CompleteRequest) (*Order, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, domainerrors.NewValidation("lat and lng are required")
	}
	lat, lng := *req.Lat, *req.Lng
	if err := common.ValidateLatLng(lat, lng); err != nil {
		return nil, domainerrors.NewValidation(err.Error())
	}

	o, err := s.repo.GetByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Complete(driverID, lat, lng, time.Now().UTC()); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.repo.Update(ctx, tx, o); err != nil {
		return nil, domainerrors.NewInternal("failed to update order", err)
	}

	c, err := s.customers.GetByID(ctx, tx, o.CustomerID)
	if err == nil {
		c.VerifiedLat = o.VerifiedLat
		c.VerifiedLng = o.VerifiedLng
		c.UpdatedAt = time.Now().UTC()
		if err := s.customers.Update(ctx, tx, c); err != nil {
			return nil, domainerrors.NewInternal("failed to update customer location", err)
		}
	}

	if err := s.appendRecord(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domainerrors.NewInternal("failed to commit order", err)
	}

	s.logger.Info("order delivered",
		slog.String("order_id", o.ID.String()),
		slog.String("driver_id", driverID.String()))
	return o, nil
}

// appendRecord mirrors the order's current state into the customer's
// append-only history log.
func (s *service) appendRecord(ctx context.Context, ext sqlx.ExtContext, o *Order) error {
	rec := &customer.Record{
		ID:         uuid.New(),
		CustomerID: o.CustomerID,
		OrderID:    o.ID,
		Status:     string(o.Status),
		DriverName: o.AssignedDriverName,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.customers.AppendRecord(ctx, ext, rec); err != nil {
		return domainerrors.NewInternal("failed to append customer record", err)
	}
	return nil
}
