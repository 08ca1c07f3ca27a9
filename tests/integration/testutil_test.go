package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"gasflow/internal/admin"
	"gasflow/internal/attendance"
	"gasflow/internal/customer"
	"gasflow/internal/driver"
	jwtpkg "gasflow/internal/jwt"
	"gasflow/internal/localtime"
	"gasflow/internal/middleware"
	"gasflow/internal/order"
	"gasflow/internal/redis"
	pgrepo "gasflow/internal/repo/postgres"
	"gasflow/internal/tracking"
)

// testApp holds the wired application for integration tests.
type testApp struct {
	DB       *sqlx.DB
	Redis    *goredis.Client
	Router   *gin.Engine
	JWT      *jwtpkg.Service
	Calendar localtime.Calendar
}

func skipIfNoInfra(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("skipping integration test; set INTEGRATION_TEST=1 and ensure Postgres/Redis are running")
	}
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	skipIfNoInfra(t)

	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=gasflow_admin password=secure_password dbname=gasflow_test sslmode=disable"
	}
	db, err := pgrepo.Connect(dsn, pgrepo.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("postgres connect: %v", err)
	}

	redisAddr := os.Getenv("TEST_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		db.Close()
		t.Fatalf("redis connect: %v", err)
	}

	// Schema comes from the embedded migrations, same as production.
	if err := pgrepo.RunMigrationsUp(db); err != nil {
		db.Close()
		t.Fatalf("migrations: %v", err)
	}
	cleanTestData(t, db)

	logger := slog.New(slog.DiscardHandler)
	calendar := localtime.NewCalendar(330)

	// Infrastructure
	jwtService := jwtpkg.NewService("test-secret", 24*time.Hour, 168*time.Hour)
	driverCache := redis.NewDriverLocationCache(rdb, 60)
	idempotencyStore := redis.NewIdempotencyStore(rdb, 300)
	rateLimiter := redis.NewRateLimiter(rdb, 1000, 60) // generous for tests

	// Repositories
	adminRepo := admin.NewRepository()
	driverRepo := driver.NewRepository()
	customerRepo := customer.NewRepository()
	orderRepo := order.NewRepository()
	trackingRepo := tracking.NewRepository()
	attendanceRepo := attendance.NewRepository()

	// Services
	driverService := driver.NewService(driverRepo, trackingRepo, db, driverCache, jwtService)
	customerService := customer.NewService(customerRepo, driverRepo, db)
	orderService := order.NewService(orderRepo, customerRepo, driverRepo, db, calendar, logger)
	attendanceService := attendance.NewService(attendanceRepo, trackingRepo, trackingRepo, orderRepo, driverRepo, db, calendar, 15*time.Minute, logger)
	adminService := admin.NewService(adminRepo, driverRepo, customerRepo, orderRepo, trackingRepo,
		driverCache, db, jwtService, calendar, "GAS", 5*time.Minute, 15*time.Minute, logger)

	// Handlers
	adminHandler := admin.NewHandler(adminService, calendar)
	driverHandler := driver.NewHandler(driverService)
	customerHandler := customer.NewHandler(customerService)
	orderHandler := order.NewHandler(orderService)
	attendanceHandler := attendance.NewHandler(attendanceService, driverService, calendar)

	// Router
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RateLimit(rateLimiter))
	r.Use(middleware.Auth(jwtService))

	authGroup := r.Group("/auth")
	authGroup.POST("/signup-request", adminHandler.SignupRequest)
	authGroup.POST("/complete-signup", adminHandler.CompleteSignup)
	authGroup.POST("/login", adminHandler.Login)
	authGroup.POST("/send-otp", adminHandler.SendOTP)
	authGroup.POST("/reset-password", adminHandler.ResetPassword)

	driverGroup := r.Group("/driver")
	driverGroup.POST("/login", driverHandler.Login)
	authed := driverGroup.Group("")
	authed.Use(middleware.RoleGuard(jwtpkg.RoleDriver))
	authed.POST("/logout", driverHandler.Logout)
	authed.GET("/me", driverHandler.Profile)
	authed.GET("/orders", orderHandler.Worklist)
	heartbeat := authed.Group("")
	heartbeat.Use(middleware.Bulkhead(100))
	heartbeat.POST("/heartbeat", driverHandler.Heartbeat)
	mutations := authed.Group("")
	mutations.Use(middleware.Bulkhead(50))
	mutations.Use(middleware.Idempotency(idempotencyStore))
	mutations.POST("/orders/:id/accept", orderHandler.Accept)
	mutations.PATCH("/orders/:id/complete", orderHandler.Complete)
	mutations.POST("/change-requests", customerHandler.SubmitChangeRequest)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RoleGuard(jwtpkg.RoleAdmin))
	adminGroup.Use(middleware.Bulkhead(20))
	adminGroup.GET("/dashboard", adminHandler.Dashboard)
	adminGroup.POST("/drivers", driverHandler.Create)
	adminGroup.GET("/drivers", driverHandler.List)
	adminGroup.GET("/drivers/:id", driverHandler.Get)
	adminGroup.PATCH("/drivers/:id", driverHandler.Update)
	adminGroup.DELETE("/drivers/:id", driverHandler.Delete)
	adminGroup.GET("/drivers/:id/attendance", attendanceHandler.Report)
	adminGroup.GET("/drivers/:id/attendance/export", attendanceHandler.ExportCSV)
	adminGroup.GET("/drivers/:id/track", adminHandler.TrackDriver)
	adminGroup.POST("/customers", customerHandler.Create)
	adminGroup.GET("/customers", customerHandler.List)
	adminGroup.GET("/customers/:id", customerHandler.Get)
	adminGroup.GET("/cities", customerHandler.ListCities)
	adminGroup.POST("/cities", customerHandler.AddCity)
	adminGroup.POST("/orders", orderHandler.Create)
	adminGroup.GET("/orders", orderHandler.List)
	adminGroup.GET("/orders/:id", orderHandler.Get)
	adminGroup.POST("/orders/:id/assign", orderHandler.Assign)
	adminGroup.GET("/change-requests", customerHandler.ListChangeRequests)
	adminGroup.POST("/change-requests/:id/resolve", customerHandler.ResolveChangeRequest)
	adminGroup.GET("/reports", adminHandler.Report)
	adminGroup.GET("/reports/export", adminHandler.ExportReportCSV)

	app := &testApp{DB: db, Redis: rdb, Router: r, JWT: jwtService, Calendar: calendar}

	t.Cleanup(func() {
		cleanTestData(t, db)
		rdb.FlushDB(context.Background())
		db.Close()
		rdb.Close()
	})

	return app
}

func cleanTestData(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.Exec(`DELETE FROM daily_stats`)
	db.Exec(`DELETE FROM driver_audit_events`)
	db.Exec(`DELETE FROM driver_location_pings`)
	db.Exec(`DELETE FROM change_requests`)
	db.Exec(`DELETE FROM customer_records`)
	db.Exec(`DELETE FROM orders`)
	db.Exec(`DELETE FROM customers`)
	db.Exec(`DELETE FROM cities`)
	db.Exec(`DELETE FROM drivers`)
	db.Exec(`DELETE FROM pending_otps`)
	db.Exec(`DELETE FROM admins`)
}

// --- HTTP request helpers ---

func doRequest(app *testApp, method, path string, body any, token string) *httptest.ResponseRecorder {
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Idempotency-Key", fmt.Sprintf("idem-%d", time.Now().UnixNano()))

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, w.Body.String())
	}
	return result
}

// --- Fixture helpers ---

// signupAdmin walks the passcode + OTP flow and returns a bearer token
// plus the admin id.
func signupAdmin(t *testing.T, app *testApp, email string) (token, adminID string) {
	t.Helper()

	w := doRequest(app, "POST", "/auth/signup-request", map[string]any{
		"name": "Test Admin", "email": email, "password": "password123", "passcode": "GAS",
	}, "")
	if w.Code != 202 {
		t.Fatalf("signup-request: expected 202, got %d: %s", w.Code, w.Body.String())
	}

	// The code is never returned over HTTP; read it straight from the table.
	var otp string
	if err := app.DB.Get(&otp, `SELECT otp FROM pending_otps WHERE email = $1 AND purpose = 'SIGNUP'`, email); err != nil {
		t.Fatalf("read signup otp: %v", err)
	}

	w = doRequest(app, "POST", "/auth/complete-signup", map[string]any{
		"email": email, "otp": otp,
	}, "")
	if w.Code != 201 {
		t.Fatalf("complete-signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseJSON(t, w)
	token = resp["access_token"].(string)
	adminID = resp["admin"].(map[string]any)["id"].(string)
	return token, adminID
}

func createDriver(t *testing.T, app *testApp, adminToken, phone string, cities []string) (driverID string) {
	t.Helper()

	w := doRequest(app, "POST", "/admin/drivers", map[string]any{
		"name": "Suresh", "phone": phone, "password": "driverpass", "cities": cities,
	}, adminToken)
	if w.Code != 201 {
		t.Fatalf("create driver: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return parseJSON(t, w)["id"].(string)
}

func loginDriver(t *testing.T, app *testApp, phone string) (token string) {
	t.Helper()

	w := doRequest(app, "POST", "/driver/login", map[string]any{
		"phone_number": phone, "password": "driverpass",
	}, "")
	if w.Code != 200 {
		t.Fatalf("driver login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return parseJSON(t, w)["access_token"].(string)
}

func createCustomer(t *testing.T, app *testApp, adminToken, city string) (customerID string) {
	t.Helper()

	w := doRequest(app, "POST", "/admin/customers", map[string]any{
		"name": "Ravi Kumar", "phone": "9876500000", "city": city, "landmark": "near the clock tower",
	}, adminToken)
	if w.Code != 201 {
		t.Fatalf("create customer: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return parseJSON(t, w)["id"].(string)
}
