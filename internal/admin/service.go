package admin

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/attendance"
	"gasflow/internal/auth"
	"gasflow/internal/customer"
	"gasflow/internal/driver"
	domainerrors "gasflow/internal/errors"
	"gasflow/internal/jwt"
	"gasflow/internal/localtime"
	"gasflow/internal/order"
	"gasflow/internal/redis"
	"gasflow/internal/tracking"
)

// otpTTL bounds how long a signup or reset code stays usable.
const otpTTL = 10 * time.Minute

type Service interface {
	SignupRequest(ctx context.Context, req SignupRequest) error
	CompleteSignup(ctx context.Context, req CompleteSignupRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	SendOTP(ctx context.Context, req SendOTPRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	Dashboard(ctx context.Context, adminID uuid.UUID) (*Dashboard, error)
	DeliveryReport(ctx context.Context, adminID uuid.UUID, from, to time.Time) (*DeliveryReport, error)
	TrackDriver(ctx context.Context, adminID, driverID uuid.UUID) (*tracking.TrackData, error)
}

type service struct {
	repo         Repository
	drivers      driver.Repository
	customers    customer.Repository
	orders       order.Repository
	tracking     tracking.Repository
	cache        *redis.DriverLocationCache
	db           *sqlx.DB
	jwt          *jwt.Service
	cal          localtime.Calendar
	passcode     string
	onlineWindow time.Duration
	maxGap       time.Duration
	logger       *slog.Logger
}

func NewService(
	repo Repository,
	drivers driver.Repository,
	customers customer.Repository,
	orders order.Repository,
	trackingRepo tracking.Repository,
	cache *redis.DriverLocationCache,
	db *sqlx.DB,
	jwtService *jwt.Service,
	cal localtime.Calendar,
	passcode string,
	onlineWindow time.Duration,
	maxGap time.Duration,
	logger *slog.Logger,
) Service {
	return &service{
		repo:         repo,
		drivers:      drivers,
		customers:    customers,
		orders:       orders,
		tracking:     trackingRepo,
		cache:        cache,
		db:           db,
		jwt:          jwtService,
		cal:          cal,
		passcode:     passcode,
		onlineWindow: onlineWindow,
		maxGap:       maxGap,
		logger:       logger,
	}
}

// -------------------------------------------------------------------------------------------------
// SignupRequest validates the shared passcode and parks the account
// behind an OTP. Code delivery is handled out of band; the code is only
// logged here.
func (s *service) SignupRequest(ctx context.Context, req SignupRequest) error {
	if req.Passcode != s.passcode {
		return domainerrors.InvalidPasscode()
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, s.db, email); err == nil {
		return domainerrors.EmailTaken(email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domainerrors.NewInternal("failed to hash password", err)
	}

	now := time.Now().UTC()
	pending := &PendingOTP{
		ID:           uuid.New(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		OTP:          auth.GenerateOTP(),
		Purpose:      PurposeSignup,
		ExpiresAt:    now.Add(otpTTL),
		CreatedAt:    now,
	}
	if err := s.repo.UpsertOTP(ctx, s.db, pending); err != nil {
		return domainerrors.NewInternal("failed to store signup request", err)
	}

	s.logger.Info("signup OTP issued", slog.String("email", email), slog.String("otp", pending.OTP))
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) CompleteSignup(ctx context.Context, req CompleteSignupRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	pending, err := s.repo.GetOTP(ctx, s.db, email, PurposeSignup)
	if err != nil {
		return nil, domainerrors.InvalidOTP()
	}
	if pending.OTP != req.OTP || time.Now().UTC().After(pending.ExpiresAt) {
		return nil, domainerrors.InvalidOTP()
	}

	now := time.Now().UTC()
	a := &Admin{
		ID:           uuid.New(),
		Name:         pending.Name,
		Email:        email,
		PasswordHash: pending.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.repo.Create(ctx, tx, a); err != nil {
		return nil, domainerrors.EmailTaken(email)
	}
	if err := s.repo.DeleteOTP(ctx, tx, email, PurposeSignup); err != nil {
		return nil, domainerrors.NewInternal("failed to consume OTP", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domainerrors.NewInternal("failed to commit signup", err)
	}

	return s.issueToken(a)
}

// -------------------------------------------------------------------------------------------------
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	a, err := s.repo.GetByEmail(ctx, s.db, email)
	if err != nil {
		return nil, domainerrors.InvalidCredentials()
	}
	if !auth.CheckPassword(req.Password, a.PasswordHash) {
		return nil, domainerrors.InvalidCredentials()
	}
	return s.issueToken(a)
}

func (s *service) issueToken(a *Admin) (*LoginResponse, error) {
	token, err := s.jwt.GenerateToken(a.ID.String(), jwt.RoleAdmin)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to issue token", err)
	}
	return &LoginResponse{AccessToken: token, Admin: a}, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) SendOTP(ctx context.Context, req SendOTPRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.GetByEmail(ctx, s.db, email); err != nil {
		return domainerrors.AdminNotFound(email)
	}

	now := time.Now().UTC()
	pending := &PendingOTP{
		ID:        uuid.New(),
		Email:     email,
		OTP:       auth.GenerateOTP(),
		Purpose:   PurposeReset,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := s.repo.UpsertOTP(ctx, s.db, pending); err != nil {
		return domainerrors.NewInternal("failed to store reset request", err)
	}

	s.logger.Info("reset OTP issued", slog.String("email", email), slog.String("otp", pending.OTP))
	return nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	pending, err := s.repo.GetOTP(ctx, s.db, email, PurposeReset)
	if err != nil {
		return domainerrors.InvalidOTP()
	}
	if pending.OTP != req.OTP || time.Now().UTC().After(pending.ExpiresAt) {
		return domainerrors.InvalidOTP()
	}

	a, err := s.repo.GetByEmail(ctx, s.db, email)
	if err != nil {
		return domainerrors.AdminNotFound(email)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return domainerrors.NewInternal("failed to hash password", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domainerrors.NewInternal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.repo.UpdatePassword(ctx, tx, a.ID, hash); err != nil {
		return domainerrors.NewInternal("failed to update password", err)
	}
	if err := s.repo.DeleteOTP(ctx, tx, email, PurposeReset); err != nil {
		return domainerrors.NewInternal("failed to consume OTP", err)
	}
	return tx.Commit()
}

// -------------------------------------------------------------------------------------------------
func (s *service) Dashboard(ctx context.Context, adminID uuid.UUID) (*Dashboard, error) {
	customers, err := s.customers.CountByAdmin(ctx, s.db, adminID)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count customers", err)
	}

	drivers, err := s.drivers.ListByAdmin(ctx, s.db, adminID)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to list drivers", err)
	}

	pending, err := s.orders.CountByAdminAndStatus(ctx, s.db, adminID, order.StatusPending)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count pending orders", err)
	}
	unassigned, err := s.orders.CountUnassignedByAdmin(ctx, s.db, adminID)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count unassigned orders", err)
	}
	inProgress, err := s.orders.CountByAdminAndStatus(ctx, s.db, adminID, order.StatusInProgress)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count in-progress orders", err)
	}

	today := s.cal.Today()
	dayStart, dayEnd := s.cal.DayStart(today), s.cal.DayEnd(today)
	deliveredToday, err := s.orders.CountDeliveredByAdminInWindow(ctx, s.db, adminID, dayStart, dayEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count deliveries", err)
	}

	online := 0
	cards := make([]*DriverCard, 0, len(drivers))
	for _, d := range drivers {
		card, err := s.driverCard(ctx, d, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		if card.Online {
			online++
		}
		cards = append(cards, card)
	}

	return &Dashboard{
		Customers:        customers,
		TotalDrivers:     len(drivers),
		OnlineDrivers:    online,
		PendingOrders:    pending,
		UnassignedOrders: unassigned,
		InProgressOrders: inProgress,
		DeliveredToday:   deliveredToday,
		Drivers:          cards,
	}, nil
}

// driverCard summarizes one driver's day: work time is reconstructed live
// from today's heartbeats, never from frozen stats.
func (s *service) driverCard(ctx context.Context, d *driver.Driver, dayStart, dayEnd time.Time) (*DriverCard, error) {
	pings, err := s.tracking.ListPings(ctx, s.db, d.ID, dayStart, dayEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load pings", err)
	}
	timestamps := make([]time.Time, len(pings))
	for i, p := range pings {
		timestamps[i] = p.Timestamp
	}
	workSeconds := attendance.ActiveSeconds(timestamps, s.maxGap)

	open, err := s.orders.CountOpenByDriver(ctx, s.db, d.ID)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count open orders", err)
	}
	delivered, err := s.orders.CountDeliveredInWindow(ctx, s.db, d.ID, dayStart, dayEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to count deliveries", err)
	}

	return &DriverCard{
		DriverID:       d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		Online:         d.IsOnline(s.onlineWindow),
		WorkSeconds:    workSeconds,
		WorkTime:       attendance.FormatDuration(workSeconds),
		OpenOrders:     open,
		DeliveredToday: delivered,
	}, nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) DeliveryReport(ctx context.Context, adminID uuid.UUID, from, to time.Time) (*DeliveryReport, error) {
	from, to = s.cal.DateOf(from), s.cal.DateOf(to)
	if to.Before(from) {
		return nil, domainerrors.NewValidation("range end precedes range start")
	}

	delivered, err := s.orders.ListDeliveredByAdminInWindow(ctx, s.db, adminID, s.cal.DayStart(from), s.cal.DayEnd(to))
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load deliveries", err)
	}

	byDay := map[string]int{}
	byCity := map[string]int{}
	var byHour map[string]int
	if days := int(to.Sub(from).Hours()/24) + 1; days <= 2 {
		byHour = map[string]int{}
	}
	byDriver := map[uuid.UUID]*DriverReportRow{}
	for _, o := range delivered {
		byDay[s.cal.DateKey(*o.DeliveredAt)]++
		byCity[o.City]++
		if byHour != nil {
			byHour[s.cal.FormatHour(*o.DeliveredAt)]++
		}
		if o.AssignedDriverID != nil {
			row, ok := byDriver[*o.AssignedDriverID]
			if !ok {
				row = &DriverReportRow{DriverID: *o.AssignedDriverID, DriverName: o.AssignedDriverName}
				byDriver[*o.AssignedDriverID] = row
			}
			row.Delivered++
		}
	}

	rows := make([]*DriverReportRow, 0, len(byDriver))
	for _, row := range byDriver {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Delivered != rows[j].Delivered {
			return rows[i].Delivered > rows[j].Delivered
		}
		return rows[i].DriverName < rows[j].DriverName
	})
	if len(rows) > 5 {
		rows = rows[:5]
	}

	byStatus := map[string]int{}
	for _, st := range []order.Status{order.StatusPending, order.StatusInProgress, order.StatusDelivered} {
		n, err := s.orders.CountByAdminAndStatus(ctx, s.db, adminID, st)
		if err != nil {
			return nil, domainerrors.NewInternal("failed to count orders by status", err)
		}
		byStatus[string(st)] = n
	}

	days := int(to.Sub(from).Hours()/24) + 1
	avg := math.Round(float64(len(delivered))/float64(days)*10) / 10

	return &DeliveryReport{
		From:           s.cal.DateKey(from),
		To:             s.cal.DateKey(to),
		TotalDelivered: len(delivered),
		AvgPerDay:      avg,
		ByDay:          byDay,
		ByHour:         byHour,
		ByCity:         byCity,
		ByStatus:       byStatus,
		ByDriver:       rows,
	}, nil
}

// -------------------------------------------------------------------------------------------------
// TrackDriver builds the live-map payload: the freshest position from
// the cache (falling back to the last persisted heartbeat), today's
// movement path and markers for the driver's current orders.
func (s *service) TrackDriver(ctx context.Context, adminID, driverID uuid.UUID) (*tracking.TrackData, error) {
	d, err := s.drivers.GetByID(ctx, s.db, driverID)
	if err != nil || d.AdminID != adminID {
		return nil, domainerrors.DriverNotFound(driverID.String())
	}

	data := &tracking.TrackData{Path: []tracking.PathPoint{}, Markers: []tracking.OrderMarker{}}

	if cached, err := s.cache.Get(ctx, driverID.String()); err == nil && cached != nil {
		data.CurrentPos = &tracking.PathPoint{Lat: cached.Lat, Lng: cached.Lng}
	} else if d.CurrentLat != nil && d.CurrentLng != nil {
		data.CurrentPos = &tracking.PathPoint{Lat: *d.CurrentLat, Lng: *d.CurrentLng}
	}

	todayStart := s.cal.DayStart(s.cal.Today())
	pings, err := s.tracking.ListPathSince(ctx, s.db, driverID, todayStart)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load path", err)
	}
	for _, p := range pings {
		data.Path = append(data.Path, tracking.PathPoint{Lat: p.Lat, Lng: p.Lng})
	}

	orders, err := s.orders.ListForWorklist(ctx, s.db, driverID, todayStart)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load orders", err)
	}
	for _, o := range orders {
		if o.VerifiedLat == nil || o.VerifiedLng == nil {
			continue
		}
		data.Markers = append(data.Markers, tracking.OrderMarker{
			Lat:      *o.VerifiedLat,
			Lng:      *o.VerifiedLng,
			Status:   string(o.Status),
			Customer: o.CustomerName,
			Address:  o.Landmark,
		})
	}
	return data, nil
}
