package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:         "8080",
		DatabaseDriver:   "postgres",
		DatabaseDSN:      "host=db",
		JWTSecret:        strings.Repeat("s", 32),
		LockTTL:          10 * time.Second,
		LockWait:         5 * time.Second,
		LedgerMaxRetries: 3,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("LOCK_WAIT", "")
	t.Setenv("LEDGER_MAX_RETRIES", "")

	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.LockWait != 5*time.Second {
		t.Fatalf("expected 5s lock wait, got %v", cfg.LockWait)
	}
	if cfg.LedgerMaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.LedgerMaxRetries)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "MySQL")
	t.Setenv("LOCK_TTL", "30s")
	t.Setenv("LEDGER_MAX_RETRIES", "7")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	cfg := Load()
	if cfg.DatabaseDriver != "mysql" {
		t.Fatalf("expected mysql, got %q", cfg.DatabaseDriver)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Fatalf("expected 30s, got %v", cfg.LockTTL)
	}
	if cfg.LedgerMaxRetries != 7 {
		t.Fatalf("expected 7, got %d", cfg.LedgerMaxRetries)
	}
	if cfg.RedisAddress != "redis:6379" {
		t.Fatalf("unexpected redis address %q", cfg.RedisAddress)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LOCK_WAIT", "soon")
	t.Setenv("LEDGER_MAX_RETRIES", "many")

	cfg := Load()
	if cfg.LockWait != 5*time.Second || cfg.LedgerMaxRetries != 3 {
		t.Fatalf("expected defaults, got wait=%v retries=%d", cfg.LockWait, cfg.LedgerMaxRetries)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, false},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, false},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "sqlite" }, false},
		{"wait above ttl", func(c *Config) { c.LockWait = time.Minute }, false},
		{"negative retries", func(c *Config) { c.LedgerMaxRetries = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseDSN = defaultDatabaseDSN
	cfg.CORSOrigins = "https://farm.example"
	w := cfg.Warnings()
	if len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %v", w)
	}
}
