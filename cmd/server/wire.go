package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"gasflow/config"
	"gasflow/internal/admin"
	"gasflow/internal/attendance"
	"gasflow/internal/customer"
	"gasflow/internal/driver"
	"gasflow/internal/jwt"
	"gasflow/internal/localtime"
	"gasflow/internal/order"
	"gasflow/internal/redis"
	pgrepo "gasflow/internal/repo/postgres"
	"gasflow/internal/tracking"
)

type AppContext struct {
	DB     *sqlx.DB
	Config *config.Config
	Redis  *goredis.Client
	Router *gin.Engine
	Logger *slog.Logger

	// Infrastructure
	JWTService       *jwt.Service
	DriverCache      *redis.DriverLocationCache
	IdempotencyStore *redis.IdempotencyStore
	RateLimiter      *redis.RateLimiter
	Calendar         localtime.Calendar

	AdminHandler      *admin.Handler
	DriverHandler     *driver.Handler
	CustomerHandler   *customer.Handler
	OrderHandler      *order.Handler
	AttendanceHandler *attendance.Handler

	AdminService      admin.Service
	DriverService     driver.Service
	CustomerService   customer.Service
	OrderService      order.Service
	AttendanceService attendance.Service

	AdminRepo      admin.Repository
	DriverRepo     driver.Repository
	CustomerRepo   customer.Repository
	OrderRepo      order.Repository
	TrackingRepo   tracking.Repository
	AttendanceRepo attendance.Repository
}

func wireApp(cfg *config.Config) (*AppContext, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ── Postgres ──
	db, err := pgrepo.Connect(cfg.Postgres.DSN(), pgrepo.DefaultPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pgrepo.RunMigrationsUp(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// ── Redis ──
	var rdb *goredis.Client
	if cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis parse url: %w", err)
		}
		rdb = goredis.NewClient(opts)
	} else {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// ── Infrastructure ──
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AdminExpiry, cfg.JWT.DriverExpiry)
	driverCache := redis.NewDriverLocationCache(rdb, cfg.Attendance.LocationCacheTTL)
	idempotencyStore := redis.NewIdempotencyStore(rdb, cfg.Attendance.IdempotencyTTLSec)
	rateLimiter := redis.NewRateLimiter(rdb, cfg.RateLimiter.MaxRequests, cfg.RateLimiter.WindowSeconds)
	calendar := localtime.NewCalendar(cfg.Locale.UTCOffsetMinutes)
	maxGap := time.Duration(cfg.Attendance.GapSeconds) * time.Second

	// ── Repositories ──
	adminRepo := admin.NewRepository()
	driverRepo := driver.NewRepository()
	customerRepo := customer.NewRepository()
	orderRepo := order.NewRepository()
	trackingRepo := tracking.NewRepository()
	attendanceRepo := attendance.NewRepository()

	// ── Services ──
	driverService := driver.NewService(driverRepo, trackingRepo, db, driverCache, jwtService)
	customerService := customer.NewService(customerRepo, driverRepo, db)
	orderService := order.NewService(orderRepo, customerRepo, driverRepo, db, calendar, logger)
	attendanceService := attendance.NewService(attendanceRepo, trackingRepo, trackingRepo, orderRepo, driverRepo, db, calendar, maxGap, logger)
	adminService := admin.NewService(adminRepo, driverRepo, customerRepo, orderRepo, trackingRepo,
		driverCache, db, jwtService, calendar, cfg.Admin.SignupPasscode, cfg.Attendance.OnlineWindow, maxGap, logger)

	// ── Handlers ──
	adminHandler := admin.NewHandler(adminService, calendar)
	driverHandler := driver.NewHandler(driverService)
	customerHandler := customer.NewHandler(customerService)
	orderHandler := order.NewHandler(orderService)
	attendanceHandler := attendance.NewHandler(attendanceService, driverService, calendar)

	return &AppContext{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Router: gin.Default(),
		Logger: logger,

		JWTService:       jwtService,
		DriverCache:      driverCache,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		Calendar:         calendar,

		AdminRepo:      adminRepo,
		DriverRepo:     driverRepo,
		CustomerRepo:   customerRepo,
		OrderRepo:      orderRepo,
		TrackingRepo:   trackingRepo,
		AttendanceRepo: attendanceRepo,

		AdminService:      adminService,
		DriverService:     driverService,
		CustomerService:   customerService,
		OrderService:      orderService,
		AttendanceService: attendanceService,

		AdminHandler:      adminHandler,
		DriverHandler:     driverHandler,
		CustomerHandler:   customerHandler,
		OrderHandler:      orderHandler,
		AttendanceHandler: attendanceHandler,
	}, nil
}

func (a *AppContext) Close() {
	a.DB.Close()
	a.Redis.Close()
}

func (a *AppContext) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	healthy := true

	if err := a.DB.PingContext(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := a.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": checks,
		"pool":   pgrepo.GetPoolMetrics(a.DB),
	})
}
