// Command syncstats freezes one local calendar day of attendance into
// daily_stats. It is meant to run from cron shortly after local midnight,
// defaulting to yesterday; pass -date to rebuild an older day.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"gasflow/config"
	"gasflow/internal/attendance"
	"gasflow/internal/driver"
	"gasflow/internal/localtime"
	"gasflow/internal/order"
	pgrepo "gasflow/internal/repo/postgres"
	"gasflow/internal/tracking"
)

func main() {
	dateFlag := flag.String("date", "", "local date to freeze (YYYY-MM-DD), defaults to yesterday")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := pgrepo.Connect(cfg.Postgres.DSN(), pgrepo.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := pgrepo.RunMigrationsUp(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	calendar := localtime.NewCalendar(cfg.Locale.UTCOffsetMinutes)
	maxGap := time.Duration(cfg.Attendance.GapSeconds) * time.Second

	date := calendar.Today().AddDate(0, 0, -1)
	if *dateFlag != "" {
		date, err = calendar.ParseDate(*dateFlag)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *dateFlag, err)
		}
	}

	service := attendance.NewService(
		attendance.NewRepository(),
		tracking.NewRepository(),
		tracking.NewRepository(),
		order.NewRepository(),
		driver.NewRepository(),
		db, calendar, maxGap, logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rows, err := service.SyncDay(ctx, date)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Printf("froze %d driver day(s) for %s", rows, calendar.DateKey(date))
}
