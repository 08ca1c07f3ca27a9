package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server         ServerConfig
	JWT            JWTConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	RateLimiter    RateLimiterConfig
	CircuitBreaker CircuitBreakerConfig
	Bulkhead       BulkheadConfig
	Attendance     AttendanceConfig
	Locale         LocaleConfig
	Admin          AdminConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Secret       string
	AdminExpiry  time.Duration
	DriverExpiry time.Duration
}

type PostgresConfig struct {
	URL      string // DATABASE_URL takes precedence if set
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

type RedisConfig struct {
	URL      string // REDIS_URL takes precedence if set
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimiterConfig struct {
	MaxRequests   int
	WindowSeconds int
}

type CircuitBreakerConfig struct {
	FailureThreshold int
	CooldownSeconds  int
}

type BulkheadConfig struct {
	HeartbeatPool int
	MutationPool  int
	AdminPool     int
}

// AttendanceConfig tunes work-time reconstruction. GapSeconds is the
// maximum silence between two heartbeat pings still counted as continuous
// work; earlier deployments disagreed between 900 and 3600, so it is a
// knob with 900 as the documented default.
type AttendanceConfig struct {
	GapSeconds        int
	OnlineWindow      time.Duration
	LocationCacheTTL  int
	IdempotencyTTLSec int
}

// LocaleConfig fixes the calendar used for day bucketing. Storage is
// always UTC; dashboards and the nightly freeze bucket by this offset.
type LocaleConfig struct {
	UTCOffsetMinutes int
}

type AdminConfig struct {
	SignupPasscode string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvInt("PORT", getenvInt("SERVER_PORT", 8080)),
			ShutdownTimeout: time.Duration(getenvInt("SHUTDOWN_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:       getenv("JWT_SECRET", "default-secret-change-me"),
			AdminExpiry:  time.Duration(getenvInt("JWT_ADMIN_EXPIRY_HOURS", 24)) * time.Hour,
			DriverExpiry: time.Duration(getenvInt("JWT_DRIVER_EXPIRY_HOURS", 168)) * time.Hour,
		},
		Postgres: PostgresConfig{
			URL:      getenv("DATABASE_URL", ""),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenvInt("POSTGRES_PORT", 5432),
			User:     getenv("POSTGRES_USER", "gasflow_admin"),
			Password: getenv("POSTGRES_PASSWORD", "secure_password"),
			DB:       getenv("POSTGRES_DB", "gasflow"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getenv("REDIS_URL", ""),
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenvInt("REDIS_PORT", 6379),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimiter: RateLimiterConfig{
			MaxRequests:   getenvInt("RATE_LIMIT_MAX_REQUESTS", 100),
			WindowSeconds: getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: getenvInt("CB_FAILURE_THRESHOLD", 5),
			CooldownSeconds:  getenvInt("CB_COOLDOWN_SECONDS", 30),
		},
		Bulkhead: BulkheadConfig{
			HeartbeatPool: getenvInt("BULKHEAD_HEARTBEAT_POOL", 100),
			MutationPool:  getenvInt("BULKHEAD_MUTATION_POOL", 50),
			AdminPool:     getenvInt("BULKHEAD_ADMIN_POOL", 20),
		},
		Attendance: AttendanceConfig{
			GapSeconds:        getenvInt("ATTENDANCE_GAP_SECONDS", 900),
			OnlineWindow:      time.Duration(getenvInt("DRIVER_ONLINE_WINDOW_SECONDS", 300)) * time.Second,
			LocationCacheTTL:  getenvInt("DRIVER_LOCATION_CACHE_TTL_SECONDS", 60),
			IdempotencyTTLSec: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		},
		Locale: LocaleConfig{
			UTCOffsetMinutes: getenvInt("LOCAL_UTC_OFFSET_MINUTES", 330),
		},
		Admin: AdminConfig{
			SignupPasscode: getenv("ADMIN_SIGNUP_PASSCODE", "GAS"),
		},
	}

	return cfg, nil
}

func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
