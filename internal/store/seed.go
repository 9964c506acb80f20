package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/model"
)

// DefaultAdminName is the display name of the seeded administrator.
const DefaultAdminName = "Administrator"

// SeedAdmin creates an active admin account when no user with email exists.
// An empty password is rejected so a fresh install never has a guessable
// login.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("seed admin email and password are required")
	}

	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", email)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		Name:         DefaultAdminName,
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}
