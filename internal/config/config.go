package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=farmorbit port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string // postgres | mysql
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string

	// Empty RedisAddress switches the ledger to in-process item locks and
	// disables the idempotency cache.
	RedisAddress  string
	RedisPassword string

	LockTTL          time.Duration
	LockWait         time.Duration
	LedgerMaxRetries int
	IdempotencyTTL   time.Duration

	LogLevel string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:   strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:      getEnv("DATABASE_DSN", defaultDatabaseDSN),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		LockTTL:          getDuration("LOCK_TTL", 10*time.Second),
		LockWait:         getDuration("LOCK_WAIT", 5*time.Second),
		LedgerMaxRetries: getInt("LEDGER_MAX_RETRIES", 3),
		IdempotencyTTL:   getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.LockTTL <= 0 || c.LockWait <= 0 {
		return errors.New("LOCK_TTL and LOCK_WAIT must be positive")
	}
	if c.LockWait > c.LockTTL {
		return errors.New("LOCK_WAIT must not exceed LOCK_TTL")
	}
	if c.LedgerMaxRetries < 0 {
		return errors.New("LEDGER_MAX_RETRIES cannot be negative")
	}
	return nil
}

// Warnings lists insecure development defaults still in use.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDatabaseDSN {
		w = append(w, "DATABASE_DSN uses the development default")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		w = append(w, "CORS_ALLOWED_ORIGINS uses the development default")
	}
	if c.RedisAddress == "" {
		w = append(w, "REDIS_ADDRESS not set; inventory locks are local to this process")
	}
	return w
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
