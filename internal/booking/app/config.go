package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer        string // Issuer claim for tokens (default: booking-api)
	SessionSecret string // Required: HMAC secret for session tokens
	ResetSecret   string // Required: HMAC secret for password-reset tokens
	SessionTTL    time.Duration
	ResetTTL      time.Duration

	DatabaseFile string        // Path to the SQLite database file (default: ./booking.db)
	LocalTZ      string        // Reference zone for naive booking times (default: Europe/Budapest)
	CancelWindow time.Duration // Minimum cancellation lead time (default: 24h)

	SMTPHost     string // Mail relay; notifications are skipped when empty
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	NotifyEmail  string // Recipient of new-booking notices (the technician)
	ResetURLBase string // Frontend URL the reset token is appended to

	Env                 string // Environment (dev, staging, prod) (default: dev)
	LogLevel            string // Log level (debug, info, warn, error) (default: info)
	LogFormat           string // Log format (json, text) (default: json)
	Port                int    // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:        getEnvOrDefault("BOOKING_ISSUER", "booking-api"),
		SessionSecret: os.Getenv("BOOKING_SESSION_SECRET"),
		ResetSecret:   os.Getenv("BOOKING_RESET_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("BOOKING_SESSION_TTL", 60*time.Minute),
		ResetTTL:      getEnvDurationOrDefault("BOOKING_RESET_TTL", 15*time.Minute),

		DatabaseFile: getEnvOrDefault("BOOKING_DATABASE_FILE", "booking.db"),
		LocalTZ:      getEnvOrDefault("BOOKING_LOCAL_TZ", "Europe/Budapest"),
		CancelWindow: getEnvDurationOrDefault("BOOKING_CANCEL_WINDOW", 24*time.Hour),

		SMTPHost:     os.Getenv("BOOKING_SMTP_HOST"),
		SMTPPort:     getEnvOrDefault("BOOKING_SMTP_PORT", "587"),
		SMTPFrom:     getEnvOrDefault("BOOKING_SMTP_FROM", "no-reply@booking.local"),
		SMTPUsername: os.Getenv("BOOKING_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("BOOKING_SMTP_PASSWORD"),
		NotifyEmail:  os.Getenv("BOOKING_NOTIFY_EMAIL"),
		ResetURLBase: os.Getenv("BOOKING_RESET_URL_BASE"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// The two secrets must be distinct so a leaked reset token can never be
	// replayed as a session token.
	if cfg.SessionSecret == "" {
		return cfg, errors.New("BOOKING_SESSION_SECRET is required")
	}
	if cfg.ResetSecret == "" {
		return cfg, errors.New("BOOKING_RESET_SECRET is required")
	}
	if cfg.SessionSecret == cfg.ResetSecret {
		return cfg, errors.New("BOOKING_SESSION_SECRET and BOOKING_RESET_SECRET must differ")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Accept bare integers as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
