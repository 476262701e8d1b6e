package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port         string
	Origin       string
	Environment  string
	LogLevel     string
	Database     DatabaseConfig
	Redis        RedisConfig
	Session      SessionConfig
	Admin        AdminConfig
	Booking      BookingConfig
	Mock         MockConfig
	Mailer       MailerConfig
	RateLimit    RateLimitConfig
	Integrations IntegrationsConfig
}

// DatabaseConfig holds database connection details. An empty Driver keeps
// appointments and chats in memory.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
	Debug    bool
}

// RedisConfig selects the redis session backend when Addr is set.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// SessionConfig holds session token settings
type SessionConfig struct {
	JWTSecret  string
	TTLMinutes int
}

// AdminConfig holds the admin console credentials
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// BookingConfig holds slot window, reminder and cleanup settings
type BookingConfig struct {
	DaysAhead        int
	Currency         string
	ReminderSchedule string
	FlowTTL          time.Duration
	SweepInterval    time.Duration
}

// MockConfig holds the fixed delays of the mock services
type MockConfig struct {
	PaymentDelay time.Duration
	OTPDelay     time.Duration
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// RateLimitConfig limits login and OTP requests per client IP
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// IntegrationsConfig carries placeholder keys of collaborators that are not
// integrated (maps, payments, social auth).
type IntegrationsConfig struct {
	MapsAPIKey            string
	PaymentPublishableKey string
	SocialAuthProjectID   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "doctor_booking"),
		DSN:      getEnv("DB_DSN", ""),
	}

	if dbConfig.DSN == "" {
		switch dbConfig.Driver {
		case "mysql":
			dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
		case "postgres":
			dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Name)
		}
	}

	var err error
	if dbConfig.Debug, err = strconv.ParseBool(getEnv("DB_DEBUG", "false")); err != nil {
		return nil, fmt.Errorf("invalid DB_DEBUG: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	daysAhead, err := strconv.Atoi(getEnv("BOOKING_DAYS_AHEAD", "14"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_DAYS_AHEAD: %w", err)
	}
	if daysAhead <= 0 {
		return nil, fmt.Errorf("invalid BOOKING_DAYS_AHEAD: must be positive, got %d", daysAhead)
	}

	flowTTL, err := time.ParseDuration(getEnv("BOOKING_FLOW_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_FLOW_TTL: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	if sweepInterval <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: must be positive, got %s", sweepInterval)
	}

	paymentDelay, err := time.ParseDuration(getEnv("MOCK_PAYMENT_DELAY", "1500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_PAYMENT_DELAY: %w", err)
	}

	otpDelay, err := time.ParseDuration(getEnv("MOCK_OTP_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_OTP_DELAY: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return &Config{
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:5173"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database:    dbConfig,
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "session:"),
		},
		Session: SessionConfig{
			JWTSecret:  getEnv("JWT_SECRET", "default_jwt_secret"),
			TTLMinutes: sessionTTL,
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Booking: BookingConfig{
			DaysAhead:        daysAhead,
			Currency:         getEnv("BOOKING_CURRENCY", "INR"),
			ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
			FlowTTL:          flowTTL,
			SweepInterval:    sweepInterval,
		},
		Mock: MockConfig{
			PaymentDelay: paymentDelay,
			OTPDelay:     otpDelay,
		},
		Mailer: MailerConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("MAILER_FROM_EMAIL", "no-reply@doctor-booking.local"),
			FromName:       getEnv("MAILER_FROM_NAME", "Doctor Booking"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Integrations: IntegrationsConfig{
			MapsAPIKey:            getEnv("MAPS_API_KEY", "your_maps_api_key"),
			PaymentPublishableKey: getEnv("PAYMENT_PUBLISHABLE_KEY", "your_publishable_key"),
			SocialAuthProjectID:   getEnv("SOCIAL_AUTH_PROJECT_ID", "your_project_id"),
		},
	}, nil
}

// SessionTTL is the lifetime of a session token.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
