package attendance

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/driver"
	domainerrors "gasflow/internal/errors"
	"gasflow/internal/localtime"
	"gasflow/internal/tracking"
)

// The service reads from three append-only sources. Narrow interfaces
// keep it decoupled from the owning packages and let tests feed canned
// data without a database.
type pingSource interface {
	ListPings(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*tracking.LocationPing, error)
}

type eventSource interface {
	ListEvents(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, kind tracking.EventKind, from, to time.Time) ([]*tracking.AuditEvent, error)
}

type deliverySource interface {
	ListDeliveredTimes(ctx context.Context, ext sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]time.Time, error)
}

type driverSource interface {
	ListAll(ctx context.Context, ext sqlx.ExtContext) ([]*driver.Driver, error)
}

type Service interface {
	// ComputeDay reconstructs one local calendar day from the raw ping,
	// login and delivery logs.
	ComputeDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*DayRecord, error)

	// DetailedMetrics computes every day in the range live, ignoring the
	// frozen table entirely.
	DetailedMetrics(ctx context.Context, driverID uuid.UUID, from, to time.Time) (*Report, error)

	// AuditTable serves frozen rows for days before today and a live
	// computation for today, so historical numbers never shift under the
	// reader.
	AuditTable(ctx context.Context, driverID uuid.UUID, from, to time.Time) (*Report, error)

	// SyncDay freezes the given local date for every driver. Per-driver
	// failures are logged and skipped; one bad driver never blocks the
	// rest of the fleet.
	SyncDay(ctx context.Context, date time.Time) (int, error)
}

type service struct {
	repo       Repository
	pings      pingSource
	events     eventSource
	deliveries deliverySource
	drivers    driverSource
	db         *sqlx.DB
	cal        localtime.Calendar
	maxGap     time.Duration
	logger     *slog.Logger
}

func NewService(repo Repository, pings pingSource, events eventSource, deliveries deliverySource, drivers driverSource, db *sqlx.DB, cal localtime.Calendar, maxGap time.Duration, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		pings:      pings,
		events:     events,
		deliveries: deliveries,
		drivers:    drivers,
		db:         db,
		cal:        cal,
		maxGap:     maxGap,
		logger:     logger,
	}
}

// -------------------------------------------------------------------------------------------------
func (s *service) ComputeDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*DayRecord, error) {
	from, to := s.cal.DayStart(date), s.cal.DayEnd(date)

	pings, err := s.pings.ListPings(ctx, s.db, driverID, from, to)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load pings", err)
	}
	logins, err := s.events.ListEvents(ctx, s.db, driverID, tracking.EventLogin, from, to)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load login events", err)
	}
	delivered, err := s.deliveries.ListDeliveredTimes(ctx, s.db, driverID, from, to)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load deliveries", err)
	}

	return s.buildDay(date, pings, logins, len(delivered)), nil
}

// buildDay assembles one DayRecord from pre-fetched raw data. Duration
// comes from pings alone; logins only widen the first/last activity
// bounds shown to the admin.
func (s *service) buildDay(date time.Time, pings []*tracking.LocationPing, logins []*tracking.AuditEvent, deliveries int) *DayRecord {
	stamps := make([]time.Time, len(pings))
	for i, p := range pings {
		stamps[i] = p.Timestamp
	}
	duration := ActiveSeconds(stamps, s.maxGap)

	var first, last *time.Time
	note := func(t time.Time) {
		if first == nil || t.Before(*first) {
			tc := t
			first = &tc
		}
		if last == nil || t.After(*last) {
			tc := t
			last = &tc
		}
	}
	for _, t := range stamps {
		note(t)
	}
	for _, e := range logins {
		note(e.Timestamp)
	}

	return &DayRecord{
		Date:            s.cal.DateKey(date),
		FirstActivity:   first,
		LastActivity:    last,
		DurationSeconds: duration,
		Duration:        FormatDuration(duration),
		Deliveries:      deliveries,
	}
}

// -------------------------------------------------------------------------------------------------
func (s *service) DetailedMetrics(ctx context.Context, driverID uuid.UUID, from, to time.Time) (*Report, error) {
	from, to = s.cal.DateOf(from), s.cal.DateOf(to)
	if to.Before(from) {
		return nil, domainerrors.NewValidation("range end precedes range start")
	}

	windowStart, windowEnd := s.cal.DayStart(from), s.cal.DayEnd(to)

	pings, err := s.pings.ListPings(ctx, s.db, driverID, windowStart, windowEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load pings", err)
	}
	logins, err := s.events.ListEvents(ctx, s.db, driverID, tracking.EventLogin, windowStart, windowEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load login events", err)
	}
	delivered, err := s.deliveries.ListDeliveredTimes(ctx, s.db, driverID, windowStart, windowEnd)
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load deliveries", err)
	}

	pingsByDay := map[string][]*tracking.LocationPing{}
	for _, p := range pings {
		k := s.cal.DateKey(p.Timestamp)
		pingsByDay[k] = append(pingsByDay[k], p)
	}
	loginsByDay := map[string][]*tracking.AuditEvent{}
	for _, e := range logins {
		k := s.cal.DateKey(e.Timestamp)
		loginsByDay[k] = append(loginsByDay[k], e)
	}
	deliveriesByDay := map[string]int{}
	for _, t := range delivered {
		deliveriesByDay[s.cal.DateKey(t)]++
	}

	// Days come from the fetched data, not the range: a date with no
	// pings, logins or deliveries produces no record at all.
	var days []*DayRecord
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		k := s.cal.DateKey(d)
		if len(pingsByDay[k]) == 0 && len(loginsByDay[k]) == 0 && deliveriesByDay[k] == 0 {
			continue
		}
		days = append(days, s.buildDay(d, pingsByDay[k], loginsByDay[k], deliveriesByDay[k]))
	}
	return s.report(driverID, from, to, days), nil
}

// -------------------------------------------------------------------------------------------------
func (s *service) AuditTable(ctx context.Context, driverID uuid.UUID, from, to time.Time) (*Report, error) {
	from, to = s.cal.DateOf(from), s.cal.DateOf(to)
	if to.Before(from) {
		return nil, domainerrors.NewValidation("range end precedes range start")
	}

	today := s.cal.Today()

	frozen, err := s.repo.ListRange(ctx, s.db, driverID, s.cal.DateValue(from), s.cal.DateValue(to))
	if err != nil {
		return nil, domainerrors.NewInternal("failed to load frozen stats", err)
	}
	frozenByDay := make(map[string]*DailyStat, len(frozen))
	for _, st := range frozen {
		frozenByDay[s.cal.DateKey(st.Date)] = st
	}

	var days []*DayRecord
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		k := s.cal.DateKey(d)
		switch {
		case d.Before(today):
			if st, ok := frozenByDay[k]; ok {
				days = append(days, &DayRecord{
					Date:            k,
					FirstActivity:   st.FirstActivity,
					LastActivity:    st.LastActivity,
					DurationSeconds: st.DurationSeconds,
					Duration:        FormatDuration(st.DurationSeconds),
					Deliveries:      st.Deliveries,
				})
			} else {
				// Days the sync skipped had no activity at all.
				days = append(days, &DayRecord{Date: k, Duration: FormatDuration(0)})
			}
		case d.Equal(today):
			rec, err := s.ComputeDay(ctx, driverID, d)
			if err != nil {
				return nil, err
			}
			days = append(days, rec)
		default:
			// Future dates have nothing to report.
			days = append(days, &DayRecord{Date: k, Duration: FormatDuration(0)})
		}
	}
	return s.report(driverID, from, to, days), nil
}

func (s *service) report(driverID uuid.UUID, from, to time.Time, days []*DayRecord) *Report {
	if days == nil {
		days = []*DayRecord{}
	}

	var summary Summary
	var totalSeconds int64
	for _, d := range days {
		totalSeconds += d.DurationSeconds
		summary.TotalDeliveries += d.Deliveries
		if d.DurationSeconds > 0 {
			summary.ActiveDays++
		}
	}
	summary.TotalHours = round1(float64(totalSeconds) / 3600)
	if summary.ActiveDays > 0 {
		summary.AvgHoursPerDay = round1(summary.TotalHours / float64(summary.ActiveDays))
		summary.AvgDeliveriesPerDay = round1(float64(summary.TotalDeliveries) / float64(summary.ActiveDays))
	}

	// Newest day first, the way the panel renders the table.
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return &Report{
		DriverID: driverID,
		From:     s.cal.DateKey(from),
		To:       s.cal.DateKey(to),
		Days:     days,
		Summary:  summary,
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// -------------------------------------------------------------------------------------------------
func (s *service) SyncDay(ctx context.Context, date time.Time) (int, error) {
	date = s.cal.DateOf(date)

	drivers, err := s.drivers.ListAll(ctx, s.db)
	if err != nil {
		return 0, domainerrors.NewInternal("failed to list drivers", err)
	}

	synced := 0
	for _, d := range drivers {
		rec, err := s.ComputeDay(ctx, d.ID, date)
		if err != nil {
			s.logger.Error("daily stat computation failed",
				slog.String("driver_id", d.ID.String()),
				slog.String("date", s.cal.DateKey(date)),
				slog.Any("error", err))
			continue
		}

		// A day with no pings, no logins and no deliveries leaves no row.
		if rec.FirstActivity == nil && rec.Deliveries == 0 {
			continue
		}

		now := time.Now().UTC()
		stat := &DailyStat{
			ID:              uuid.New(),
			DriverID:        d.ID,
			Date:            s.cal.DateValue(date),
			FirstActivity:   rec.FirstActivity,
			LastActivity:    rec.LastActivity,
			DurationSeconds: rec.DurationSeconds,
			Deliveries:      rec.Deliveries,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Upsert(ctx, s.db, stat); err != nil {
			s.logger.Error("daily stat upsert failed",
				slog.String("driver_id", d.ID.String()),
				slog.String("date", s.cal.DateKey(date)),
				slog.Any("error", err))
			continue
		}
		synced++
	}

	s.logger.Info("daily stats synced",
		slog.String("date", s.cal.DateKey(date)),
		slog.Int("drivers", len(drivers)),
		slog.Int("rows", synced))
	return synced, nil
}
