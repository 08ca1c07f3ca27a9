package main

import (
	"gasflow/internal/jwt"
	"gasflow/internal/middleware"
)

func (a *AppContext) setupRoutes() {
	r := a.Router

	// ── Global Middleware (outermost → innermost) ──
	r.Use(middleware.Logger())                 // 1. Request logging
	r.Use(middleware.Recovery())               // 2. Panic recovery
	r.Use(middleware.RateLimit(a.RateLimiter)) // 3. Per-IP rate limiting
	r.Use(middleware.Auth(a.JWTService))       // 4. JWT auth (skips /auth/* and /driver/login)

	// ── Health (no auth) ──
	r.GET("/health", a.healthCheck)

	// ── Admin auth (no role guard, no idempotency) ──
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup-request", a.AdminHandler.SignupRequest)
		authGroup.POST("/complete-signup", a.AdminHandler.CompleteSignup)
		authGroup.POST("/login", a.AdminHandler.Login)
		authGroup.POST("/send-otp", a.AdminHandler.SendOTP)
		authGroup.POST("/reset-password", a.AdminHandler.ResetPassword)
	}

	// ── Driver Routes (role: driver) ──
	driverGroup := r.Group("/driver")
	{
		driverGroup.POST("/login", a.DriverHandler.Login)

		authed := driverGroup.Group("")
		authed.Use(middleware.RoleGuard(jwt.RoleDriver))
		{
			authed.POST("/logout", a.DriverHandler.Logout)
			authed.GET("/me", a.DriverHandler.Profile)
			authed.GET("/orders", a.OrderHandler.Worklist)

			// Heartbeat gets its own bulkhead pool (high concurrency) and
			// a breaker so a wedged pings table sheds load fast.
			heartbeat := authed.Group("")
			heartbeat.Use(middleware.Bulkhead(a.Config.Bulkhead.HeartbeatPool))
			heartbeat.Use(middleware.CircuitBreaker(a.Config.CircuitBreaker.FailureThreshold, a.Config.CircuitBreaker.CooldownSeconds))
			{
				heartbeat.POST("/heartbeat", a.DriverHandler.Heartbeat)
			}

			// Mutations get the mutation pool
			mutations := authed.Group("")
			mutations.Use(middleware.Bulkhead(a.Config.Bulkhead.MutationPool))
			mutations.Use(middleware.Idempotency(a.IdempotencyStore))
			{
				mutations.POST("/orders/:id/accept", a.OrderHandler.Accept)
				mutations.PATCH("/orders/:id/complete", a.OrderHandler.Complete)
				mutations.POST("/change-requests", a.CustomerHandler.SubmitChangeRequest)
			}
		}
	}

	// ── Admin Routes (role: admin) ──
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RoleGuard(jwt.RoleAdmin))
	adminGroup.Use(middleware.Bulkhead(a.Config.Bulkhead.AdminPool))
	{
		adminGroup.GET("/dashboard", a.AdminHandler.Dashboard)

		adminGroup.POST("/drivers", a.DriverHandler.Create)
		adminGroup.GET("/drivers", a.DriverHandler.List)
		adminGroup.GET("/drivers/:id", a.DriverHandler.Get)
		adminGroup.PATCH("/drivers/:id", a.DriverHandler.Update)
		adminGroup.DELETE("/drivers/:id", a.DriverHandler.Delete)
		adminGroup.GET("/drivers/:id/attendance", a.AttendanceHandler.Report)
		adminGroup.GET("/drivers/:id/attendance/export", a.AttendanceHandler.ExportCSV)
		adminGroup.GET("/drivers/:id/track", a.AdminHandler.TrackDriver)

		adminGroup.POST("/customers", a.CustomerHandler.Create)
		adminGroup.GET("/customers", a.CustomerHandler.List)
		adminGroup.GET("/customers/:id", a.CustomerHandler.Get)

		adminGroup.GET("/cities", a.CustomerHandler.ListCities)
		adminGroup.POST("/cities", a.CustomerHandler.AddCity)

		adminGroup.POST("/orders", a.OrderHandler.Create)
		adminGroup.GET("/orders", a.OrderHandler.List)
		adminGroup.GET("/orders/:id", a.OrderHandler.Get)
		adminGroup.POST("/orders/:id/assign", a.OrderHandler.Assign)

		adminGroup.GET("/change-requests", a.CustomerHandler.ListChangeRequests)
		adminGroup.POST("/change-requests/:id/resolve", a.CustomerHandler.ResolveChangeRequest)

		adminGroup.GET("/reports", a.AdminHandler.Report)
		adminGroup.GET("/reports/export", a.AdminHandler.ExportReportCSV)
	}
}
