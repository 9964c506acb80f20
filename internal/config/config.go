// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads runtime settings from INNOLAB_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must never reach a deployment.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath          string        `env:"INNOLAB_DB_PATH" envDefault:"./data/innolab.db"`
	SessionSecret   string        `env:"INNOLAB_SESSION_SECRET,required"`
	SessionLifetime time.Duration `env:"INNOLAB_SESSION_LIFETIME" envDefault:"168h"`
	ServerHost      string        `env:"INNOLAB_SERVER_HOST" envDefault:"localhost"`
	ServerPort      int           `env:"INNOLAB_SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"INNOLAB_ENV" envDefault:"development"`
	LogLevel        string        `env:"INNOLAB_LOG_LEVEL" envDefault:"info"`
	UploadsDir      string        `env:"INNOLAB_UPLOADS_DIR" envDefault:"./uploads"`

	// TrustedOrigins are extra origins allowed to make cross-origin API writes.
	TrustedOrigins []string `env:"INNOLAB_TRUSTED_ORIGINS" envSeparator:","`

	// Take the client IP from X-Real-IP / X-Forwarded-For. Enable only
	// behind a reverse proxy that overwrites those headers.
	TrustProxy bool `env:"INNOLAB_TRUST_PROXY" envDefault:"false"`

	// Response cache
	RedisURL     string `env:"INNOLAB_REDIS_URL"`
	CachePrefix  string `env:"INNOLAB_CACHE_PREFIX" envDefault:"innolab:"`
	CacheTTL     int    `env:"INNOLAB_CACHE_TTL" envDefault:"300"`       // seconds
	CacheMaxSize int    `env:"INNOLAB_CACHE_MAX_SIZE" envDefault:"5000"` // memory cache entries

	GeoIPDBPath string `env:"INNOLAB_GEOIP_DB_PATH"` // GeoLite2-Country.mmdb

	// Contact form limiter: requests per second and burst per client IP.
	ContactRate  float64 `env:"INNOLAB_CONTACT_RATE" envDefault:"0.05"`
	ContactBurst int     `env:"INNOLAB_CONTACT_BURST" envDefault:"3"`

	ActivityRetentionDays int `env:"INNOLAB_ACTIVITY_RETENTION_DAYS" envDefault:"90"`

	// Seeding
	DoSeed            bool   `env:"INNOLAB_DO_SEED" envDefault:"false"`
	SeedAdminEmail    string `env:"INNOLAB_SEED_ADMIN_EMAIL" envDefault:"admin@innolab.local"`
	SeedAdminPassword string `env:"INNOLAB_SEED_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum accepted session secret length.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("INNOLAB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("INNOLAB_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("INNOLAB_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("INNOLAB_SESSION_LIFETIME must be positive, got %s", cfg.SessionLifetime)
	}

	return cfg, nil
}

// hasMinimumEntropy reports whether s mixes at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	classes := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"0123456789",
		"!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\",
	}
	n := 0
	for _, set := range classes {
		if strings.ContainsAny(s, set) {
			n++
		}
	}
	return n >= 3
}
