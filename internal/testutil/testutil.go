// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers: a migrated temporary
// database, quiet loggers and user fixtures.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/store"
)

// TestPassword is the password of every fixture user.
const TestPassword = "longenough1"

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a migrated database in the test's temp dir. It is closed
// when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "innolab-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// hashedTestPassword is computed once; argon2id is slow enough to matter
// across hundreds of fixtures.
var hashedTestPassword string

// CreateUser inserts an active user with TestPassword and the given role.
func CreateUser(t *testing.T, db *sql.DB, email, role string) string {
	t.Helper()

	if hashedTestPassword == "" {
		h, err := auth.HashPassword(TestPassword)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		hashedTestPassword = h
	}

	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		Name:         email,
		Role:         role,
		Status:       "active",
		PasswordHash: hashedTestPassword,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u.ID
}
