package admin

import (
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type OTPPurpose string

const (
	PurposeSignup OTPPurpose = "SIGNUP"
	PurposeReset  OTPPurpose = "RESET"
)

// PendingOTP parks a signup or password reset until the emailed code
// comes back. Signup requests carry the requested account alongside the
// code; resets only need the email.
type PendingOTP struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	OTP          string     `db:"otp" json:"-"`
	Purpose      OTPPurpose `db:"purpose" json:"purpose"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Passcode string `json:"passcode" binding:"required"`
}

type CompleteSignupRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Admin       *Admin `json:"admin"`
}

type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Dashboard is the landing-page widget payload.
type Dashboard struct {
	Customers        int           `json:"customers"`
	TotalDrivers     int           `json:"total_drivers"`
	OnlineDrivers    int           `json:"online_drivers"`
	PendingOrders    int           `json:"pending_orders"`
	UnassignedOrders int           `json:"unassigned_orders"`
	InProgressOrders int           `json:"in_progress_orders"`
	DeliveredToday   int           `json:"delivered_today"`
	Drivers          []*DriverCard `json:"drivers"`
}

// DriverCard is one driver's tile on the dashboard: live status plus
// today's workload at a glance.
type DriverCard struct {
	DriverID       uuid.UUID `json:"driver_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Online         bool      `json:"online"`
	WorkSeconds    int64     `json:"work_seconds"`
	WorkTime       string    `json:"work_time"`
	OpenOrders     int       `json:"open_orders"`
	DeliveredToday int       `json:"delivered_today"`
}

// DriverReportRow aggregates one driver's deliveries over a report window.
type DriverReportRow struct {
	DriverID   uuid.UUID `json:"driver_id"`
	DriverName string    `json:"driver_name"`
	Delivered  int       `json:"delivered"`
}

// DeliveryReport is the admin reports page: delivery counts over a date
// range broken down by day, city and driver, plus the current order
// counts per status. ByDriver holds at most the top five drivers; ByHour
// is only filled for windows of up to two days, where an hourly trend
// still reads as one.
type DeliveryReport struct {
	From           string             `json:"from"`
	To             string             `json:"to"`
	TotalDelivered int                `json:"total_delivered"`
	AvgPerDay      float64            `json:"avg_per_day"`
	ByDay          map[string]int     `json:"by_day"`
	ByHour         map[string]int     `json:"by_hour,omitempty"`
	ByCity         map[string]int     `json:"by_city"`
	ByStatus       map[string]int     `json:"by_status"`
	ByDriver       []*DriverReportRow `json:"by_driver"`
}
