package attendance

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gasflow/internal/driver"
	"gasflow/internal/localtime"
	"gasflow/internal/tracking"
)

// Fixed UTC+5:30 calendar matching production deployments.
func istCalendar() localtime.Calendar {
	return localtime.NewCalendar(330)
}

type fakeSources struct {
	pings      []*tracking.LocationPing
	logins     []*tracking.AuditEvent
	deliveries []time.Time
	drivers    []*driver.Driver
	pingsErr   map[uuid.UUID]error
}

func (f *fakeSources) ListPings(_ context.Context, _ sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*tracking.LocationPing, error) {
	if err := f.pingsErr[driverID]; err != nil {
		return nil, err
	}
	var out []*tracking.LocationPing
	for _, p := range f.pings {
		if p.DriverID == driverID && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSources) ListEvents(_ context.Context, _ sqlx.ExtContext, driverID uuid.UUID, kind tracking.EventKind, from, to time.Time) ([]*tracking.AuditEvent, error) {
	var out []*tracking.AuditEvent
	for _, e := range f.logins {
		if e.DriverID == driverID && e.Kind == kind && !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSources) ListDeliveredTimes(_ context.Context, _ sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, d := range f.deliveries {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSources) ListAll(_ context.Context, _ sqlx.ExtContext) ([]*driver.Driver, error) {
	return f.drivers, nil
}

type fakeStatsRepo struct {
	upserts []*DailyStat
	frozen  []*DailyStat
}

func (r *fakeStatsRepo) Upsert(_ context.Context, _ sqlx.ExtContext, stat *DailyStat) error {
	r.upserts = append(r.upserts, stat)
	return nil
}

func (r *fakeStatsRepo) ListRange(_ context.Context, _ sqlx.ExtContext, driverID uuid.UUID, from, to time.Time) ([]*DailyStat, error) {
	var out []*DailyStat
	for _, s := range r.frozen {
		if s.DriverID == driverID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestService(src *fakeSources, repo *fakeStatsRepo) *service {
	return &service{
		repo:       repo,
		pings:      src,
		events:     src,
		deliveries: src,
		drivers:    src,
		cal:        istCalendar(),
		maxGap:     15 * time.Minute,
		logger:     slog.New(slog.DiscardHandler),
	}
}

func ping(driverID uuid.UUID, ts time.Time) *tracking.LocationPing {
	return &tracking.LocationPing{ID: uuid.New(), DriverID: driverID, Timestamp: ts}
}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestComputeDay_DurationAndBounds(t *testing.T) {
	driverID := uuid.New()
	src := &fakeSources{
		pings: []*tracking.LocationPing{
			ping(driverID, utc(2026, 3, 14, 3, 30)), // 09:00 IST
			ping(driverID, utc(2026, 3, 14, 3, 40)), // 09:10 IST
			ping(driverID, utc(2026, 3, 14, 3, 55)), // 09:25 IST
			ping(driverID, utc(2026, 3, 14, 5, 30)), // 11:00 IST
		},
		logins: []*tracking.AuditEvent{
			{ID: uuid.New(), DriverID: driverID, Kind: tracking.EventLogin, Timestamp: utc(2026, 3, 14, 3, 0)}, // 08:30 IST
		},
	}
	s := newTestService(src, &fakeStatsRepo{})

	rec, err := s.ComputeDay(context.Background(), driverID, s.cal.DayStart(utc(2026, 3, 14, 6, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.DurationSeconds != 600 {
		t.Fatalf("expected 600s, got %d", rec.DurationSeconds)
	}
	if rec.Duration != "0h 10m" {
		t.Fatalf("expected 0h 10m, got %s", rec.Duration)
	}
	// The login at 08:30 IST widens first activity beyond the pings.
	if rec.FirstActivity == nil || !rec.FirstActivity.Equal(utc(2026, 3, 14, 3, 0)) {
		t.Fatalf("expected first activity from login event, got %v", rec.FirstActivity)
	}
	if rec.LastActivity == nil || !rec.LastActivity.Equal(utc(2026, 3, 14, 5, 30)) {
		t.Fatalf("expected last activity from final ping, got %v", rec.LastActivity)
	}
}

func TestComputeDay_NoActivity(t *testing.T) {
	s := newTestService(&fakeSources{}, &fakeStatsRepo{})

	rec, err := s.ComputeDay(context.Background(), uuid.New(), utc(2026, 3, 14, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DurationSeconds != 0 || rec.FirstActivity != nil || rec.LastActivity != nil || rec.Deliveries != 0 {
		t.Fatalf("expected an empty record, got %+v", rec)
	}
	if rec.Duration != "0h 0m" {
		t.Fatalf("expected 0h 0m, got %s", rec.Duration)
	}
}

func TestDetailedMetrics_DeliveryCrossesLocalMidnight(t *testing.T) {
	driverID := uuid.New()
	// 18:45 UTC on March 14 is 00:15 IST on March 15: the delivery
	// belongs to the 15th, not the 14th.
	src := &fakeSources{
		deliveries: []time.Time{
			utc(2026, 3, 14, 12, 0),  // 17:30 IST, the 14th
			utc(2026, 3, 14, 18, 45), // 00:15 IST, the 15th
		},
	}
	s := newTestService(src, &fakeStatsRepo{})

	report, err := s.DetailedMetrics(context.Background(), driverID,
		utc(2026, 3, 14, 0, 0), utc(2026, 3, 15, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byDate := map[string]*DayRecord{}
	for _, d := range report.Days {
		byDate[d.Date] = d
	}
	if byDate["2026-03-14"].Deliveries != 1 {
		t.Fatalf("expected 1 delivery on the 14th, got %d", byDate["2026-03-14"].Deliveries)
	}
	if byDate["2026-03-15"].Deliveries != 1 {
		t.Fatalf("expected 1 delivery on the 15th, got %d", byDate["2026-03-15"].Deliveries)
	}
	if report.Summary.TotalDeliveries != 2 {
		t.Fatalf("expected 2 total deliveries, got %d", report.Summary.TotalDeliveries)
	}
}

func TestDetailedMetrics_EmptyRange(t *testing.T) {
	s := newTestService(&fakeSources{}, &fakeStatsRepo{})

	report, err := s.DetailedMetrics(context.Background(), uuid.New(),
		utc(2026, 3, 10, 0, 0), utc(2026, 3, 12, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Days) != 0 {
		t.Fatalf("expected no day rows for an empty window, got %d", len(report.Days))
	}
	if report.Summary != (Summary{}) {
		t.Fatalf("expected a zero summary, got %+v", report.Summary)
	}
}

// Idle dates inside an otherwise active range produce no record either;
// only dates with pings, logins or deliveries appear.
func TestDetailedMetrics_SkipsIdleDates(t *testing.T) {
	driverID := uuid.New()
	src := &fakeSources{
		pings: []*tracking.LocationPing{
			ping(driverID, utc(2026, 3, 10, 4, 0)),
			ping(driverID, utc(2026, 3, 10, 4, 10)),
		},
	}
	s := newTestService(src, &fakeStatsRepo{})

	report, err := s.DetailedMetrics(context.Background(), driverID,
		utc(2026, 3, 10, 0, 0), utc(2026, 3, 12, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Days) != 1 {
		t.Fatalf("expected 1 day row, got %d", len(report.Days))
	}
	if report.Days[0].Date != "2026-03-10" {
		t.Fatalf("expected the active date, got %s", report.Days[0].Date)
	}
}

func TestDetailedMetrics_SummaryAverages(t *testing.T) {
	driverID := uuid.New()
	src := &fakeSources{
		pings: []*tracking.LocationPing{
			// 2 hours continuous on the 10th.
			ping(driverID, utc(2026, 3, 10, 4, 0)),
			ping(driverID, utc(2026, 3, 10, 5, 0).Add(-5*time.Minute)),
			ping(driverID, utc(2026, 3, 10, 6, 0)),
			// 1 hour on the 11th.
			ping(driverID, utc(2026, 3, 11, 4, 0)),
			ping(driverID, utc(2026, 3, 11, 5, 0)),
		},
		deliveries: []time.Time{
			utc(2026, 3, 10, 4, 30),
			utc(2026, 3, 10, 5, 30),
			utc(2026, 3, 11, 4, 30),
		},
	}
	// Wide threshold so hour-apart pings chain.
	s := newTestService(src, &fakeStatsRepo{})
	s.maxGap = 2 * time.Hour

	report, err := s.DetailedMetrics(context.Background(), driverID,
		utc(2026, 3, 10, 0, 0), utc(2026, 3, 12, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := report.Summary
	if sum.ActiveDays != 2 {
		t.Fatalf("expected 2 active days, got %d", sum.ActiveDays)
	}
	if sum.TotalHours != 3.0 {
		t.Fatalf("expected 3.0 total hours, got %v", sum.TotalHours)
	}
	if sum.AvgHoursPerDay != 1.5 {
		t.Fatalf("expected 1.5 avg hours, got %v", sum.AvgHoursPerDay)
	}
	if sum.TotalDeliveries != 3 || sum.AvgDeliveriesPerDay != 1.5 {
		t.Fatalf("expected 3 deliveries at 1.5/day, got %d at %v", sum.TotalDeliveries, sum.AvgDeliveriesPerDay)
	}
}

func TestAuditTable_PastDaysComeFromFrozenRows(t *testing.T) {
	driverID := uuid.New()
	cal := istCalendar()
	date := utc(2026, 3, 10, 0, 0)

	first := utc(2026, 3, 10, 3, 30)
	last := utc(2026, 3, 10, 11, 30)
	repo := &fakeStatsRepo{
		frozen: []*DailyStat{{
			ID:              uuid.New(),
			DriverID:        driverID,
			Date:            cal.DateValue(date),
			FirstActivity:   &first,
			LastActivity:    &last,
			DurationSeconds: 7200,
			Deliveries:      4,
		}},
	}
	// Live sources disagree with the frozen row on purpose; the frozen
	// numbers must win for past days.
	src := &fakeSources{
		pings: []*tracking.LocationPing{
			ping(driverID, utc(2026, 3, 10, 3, 30)),
			ping(driverID, utc(2026, 3, 10, 3, 40)),
		},
	}
	s := newTestService(src, repo)

	report, err := s.AuditTable(context.Background(), driverID, date, utc(2026, 3, 11, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byDate := map[string]*DayRecord{}
	for _, d := range report.Days {
		byDate[d.Date] = d
	}
	if got := byDate["2026-03-10"]; got.DurationSeconds != 7200 || got.Deliveries != 4 {
		t.Fatalf("expected frozen 7200s/4 deliveries, got %+v", got)
	}
	// The 11th has no frozen row: it reads as an empty day.
	if got := byDate["2026-03-11"]; got.DurationSeconds != 0 || got.Duration != "0h 0m" {
		t.Fatalf("expected an empty day for the unfrozen date, got %+v", got)
	}
}

func TestSyncDay_SkipsIdleDriversAndContinuesOnError(t *testing.T) {
	active := &driver.Driver{ID: uuid.New(), Name: "worked"}
	idle := &driver.Driver{ID: uuid.New(), Name: "idle"}
	broken := &driver.Driver{ID: uuid.New(), Name: "broken"}

	src := &fakeSources{
		drivers: []*driver.Driver{broken, idle, active},
		pings: []*tracking.LocationPing{
			ping(active.ID, utc(2026, 3, 14, 3, 30)),
			ping(active.ID, utc(2026, 3, 14, 3, 40)),
		},
		pingsErr: map[uuid.UUID]error{broken.ID: errors.New("boom")},
	}
	repo := &fakeStatsRepo{}
	s := newTestService(src, repo)

	rows, err := s.SyncDay(context.Background(), utc(2026, 3, 14, 6, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 frozen row, got %d", rows)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(repo.upserts))
	}

	stat := repo.upserts[0]
	if stat.DriverID != active.ID {
		t.Fatalf("wrong driver frozen: %s", stat.DriverID)
	}
	if stat.DurationSeconds != 600 {
		t.Fatalf("expected 600s, got %d", stat.DurationSeconds)
	}
	if !stat.Date.Equal(s.cal.DateValue(utc(2026, 3, 14, 6, 0))) {
		t.Fatalf("stat keyed to wrong day: %v", stat.Date)
	}
}

func TestSyncDay_RerunProducesSameKey(t *testing.T) {
	d := &driver.Driver{ID: uuid.New()}
	src := &fakeSources{
		drivers: []*driver.Driver{d},
		pings: []*tracking.LocationPing{
			ping(d.ID, utc(2026, 3, 14, 3, 30)),
			ping(d.ID, utc(2026, 3, 14, 3, 40)),
		},
	}
	repo := &fakeStatsRepo{}
	s := newTestService(src, repo)

	day := utc(2026, 3, 14, 6, 0)
	if _, err := s.SyncDay(context.Background(), day); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if _, err := s.SyncDay(context.Background(), day); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	// Both runs target the same (driver, date) key; the upsert makes the
	// second a rewrite, never a duplicate.
	if len(repo.upserts) != 2 {
		t.Fatalf("expected 2 upsert calls, got %d", len(repo.upserts))
	}
	if !repo.upserts[0].Date.Equal(repo.upserts[1].Date) || repo.upserts[0].DriverID != repo.upserts[1].DriverID {
		t.Fatal("reruns must address the same row key")
	}
	if repo.upserts[0].DurationSeconds != repo.upserts[1].DurationSeconds {
		t.Fatal("reruns over unchanged data must produce identical stats")
	}
}
