// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the full server configuration
type Config struct {
	ServerPort  string
	StoreDriver string
	DB          *DBConfig // nil for the memory store

	JWTSecret     string
	JWTExpiration time.Duration
	CookieName    string
	CookieSecure  bool
	BcryptCost    int

	ComputeURL       string
	ComputeTimeout   time.Duration
	ComputeRateLimit float64
	ComputeBurst     int

	LogLevel          string
	InitialAdminEmail string
}

// Load reads the configuration from environment variables. Every missing or
// malformed value is reported in the returned error, not just the first.
func Load() (*Config, error) {
	var errs []string

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "3000"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),

		JWTSecret:     getRequiredEnv("JWT_SECRET_KEY", &errs),
		JWTExpiration: getEnvDuration("JWT_EXPIRATION", time.Hour, &errs),
		CookieName:    getEnv("COOKIE_NAME", "token"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false, &errs),
		BcryptCost:    getEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errs),

		ComputeURL:       getRequiredEnv("COMPUTE_API_URL", &errs),
		ComputeTimeout:   getEnvDuration("COMPUTE_TIMEOUT", 5*time.Second, &errs),
		ComputeRateLimit: getEnvFloat("COMPUTE_RATE_LIMIT", 10, &errs),
		ComputeBurst:     getEnvInt("COMPUTE_BURST", 20, &errs),

		LogLevel:          getEnv("LOG_LEVEL", "info"),
		InitialAdminEmail: os.Getenv("INITIAL_ADMIN_EMAIL"),
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		db, err := LoadDBConfig()
		if err != nil {
			errs = append(errs, err.Error())
		}
		cfg.DB = db
	case StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("invalid value for STORE_DRIVER: %q (want %s or %s)", cfg.StoreDriver, StorePostgres, StoreMemory))
	}

	if cfg.JWTExpiration <= 0 {
		errs = append(errs, "JWT_EXPIRATION must be positive")
	}
	if cfg.ComputeTimeout <= 0 {
		errs = append(errs, "COMPUTE_TIMEOUT must be positive")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if cfg.ComputeRateLimit < 0 || cfg.ComputeBurst < 0 {
		errs = append(errs, "COMPUTE_RATE_LIMIT and COMPUTE_BURST must not be negative")
	}

	if len(errs) > 0 {
		return nil, errors.New("configuration errors:\n  " + strings.Join(errs, "\n  "))
	}
	return cfg, nil
}

func getRequiredEnv(key string, errs *[]string) string {
	value := os.Getenv(key)
	if value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q", key, raw))
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64, errs *[]string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected number, got %q", key, raw))
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool, errs *[]string) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected boolean, got %q", key, raw))
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration like 1h or 30s, got %q", key, raw))
		return defaultValue
	}
	return value
}
