// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

// clearInnolabEnv removes every INNOLAB_* variable for the duration of the test.
func clearInnolabEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "INNOLAB_") {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearInnolabEnv(t)
	t.Setenv("INNOLAB_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/innolab.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/innolab.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.SessionLifetime != 168*time.Hour {
		t.Errorf("SessionLifetime = %s, want 168h", cfg.SessionLifetime)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without INNOLAB_REDIS_URL")
	}
	if cfg.ContactBurst != 3 {
		t.Errorf("ContactBurst = %d, want 3", cfg.ContactBurst)
	}
	if cfg.ActivityRetentionDays != 90 {
		t.Errorf("ActivityRetentionDays = %d, want 90", cfg.ActivityRetentionDays)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should be off by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearInnolabEnv(t)
	t.Setenv("INNOLAB_SESSION_SECRET", testSecret)
	t.Setenv("INNOLAB_DB_PATH", "/srv/innolab.db")
	t.Setenv("INNOLAB_SERVER_PORT", "3000")
	t.Setenv("INNOLAB_ENV", "production")
	t.Setenv("INNOLAB_SESSION_LIFETIME", "12h")
	t.Setenv("INNOLAB_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("INNOLAB_TRUSTED_ORIGINS", "https://lab.example.com,https://admin.example.com")
	t.Setenv("INNOLAB_TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/srv/innolab.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerAddr() != "localhost:3000" {
		t.Errorf("ServerAddr() = %q, want localhost:3000", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	if cfg.SessionLifetime != 12*time.Hour {
		t.Errorf("SessionLifetime = %s, want 12h", cfg.SessionLifetime)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with INNOLAB_REDIS_URL set")
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "https://admin.example.com" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	if !cfg.TrustProxy {
		t.Error("TrustProxy = false with INNOLAB_TRUST_PROXY=true")
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	clearInnolabEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when INNOLAB_SESSION_SECRET is not set")
	}
}

func TestLoad_RejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
		{"known_default", "change-me-to-32-byte-secret-key!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearInnolabEnv(t)
			t.Setenv("INNOLAB_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with secret %q", tt.secret)
			}
		})
	}
}

func TestLoad_RejectsNonPositiveLifetime(t *testing.T) {
	clearInnolabEnv(t)
	t.Setenv("INNOLAB_SESSION_SECRET", testSecret)
	t.Setenv("INNOLAB_SESSION_LIFETIME", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail with zero session lifetime")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefABCDEF", false},
		{"abcABC123", true},
		{"abc123!!!", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.in); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
