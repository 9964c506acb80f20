// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/session"
	"github.com/innovationlab/innolab/internal/store"
)

// CountryResolver maps a client IP to an ISO country code.
type CountryResolver interface {
	Country(ip string) string
}

// AuthService runs registration, sign-in and session resolution.
type AuthService struct {
	queries  *store.Queries
	sessions *session.Manager
	geo      CountryResolver
	activity *ActivityService
	now      func() time.Time
}

// NewAuthService creates an AuthService. geo may be nil.
func NewAuthService(db *sql.DB, sessions *session.Manager, geo CountryResolver, activity *ActivityService) *AuthService {
	return &AuthService{
		queries:  store.New(db),
		sessions: sessions,
		geo:      geo,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput is a validated registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// ClientInfo identifies the device a request came from.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// Register creates an active viewer account. A taken email yields a
// *ConflictError.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := NormalizeEmail(in.Email)

	taken, err := s.queries.EmailExists(ctx, email, "")
	if err != nil {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return model.User{}, &ConflictError{Field: "email", Message: "Email is already registered"}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Name:         name,
		Role:         model.RoleViewer,
		Status:       model.UserStatusActive,
		PasswordHash: hash,
	})
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return model.User{}, &ConflictError{Field: "email", Message: "Email is already registered"}
	}
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	s.activity.Info(ctx, model.ActivityCategoryAuth, "User registered", user.ID, "", map[string]any{"email": email})
	return user, nil
}

// Authenticate checks credentials. Unknown email, an account without a
// password and a wrong password all return ErrInvalidCredentials after the
// same hashing work. A correct password on a disabled account returns
// ErrAccountDisabled.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = NormalizeEmail(email)

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		auth.CheckDummy(password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		auth.CheckDummy(password)
		return model.User{}, ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Warn("unreadable password hash", "user_id", user.ID, "error", err)
		return model.User{}, ErrInvalidCredentials
	}
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}

	if user.IsDisabled() {
		return model.User{}, ErrAccountDisabled
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	now := s.now()
	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	return user, nil
}

func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := s.queries.UpdateUserPassword(ctx, userID, hash); err != nil {
		slog.Warn("password rehash not saved", "user_id", userID, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user_id", userID)
}

// StartSession binds userID to a new session and returns its cookie.
// ctx must carry a session loaded by session.Manager.Load.
func (s *AuthService) StartSession(ctx context.Context, userID string, client ClientInfo) (session.Cookie, error) {
	meta := session.Meta{UserAgent: client.UserAgent, IP: client.IP}
	if s.geo != nil {
		meta.Country = s.geo.Country(client.IP)
	}

	cookie, err := s.sessions.Start(ctx, userID, meta, s.now())
	if err != nil {
		return session.Cookie{}, fmt.Errorf("starting session: %w", err)
	}

	s.activity.Info(ctx, model.ActivityCategoryAuth, "Session started", userID, client.IP, map[string]any{
		"user_agent": client.UserAgent,
		"country":    meta.Country,
	})
	return cookie, nil
}

// EndSession revokes the current session, if any, and returns a clearing
// cookie. Without a session it is a no-op.
func (s *AuthService) EndSession(ctx context.Context) (session.Cookie, error) {
	userID := s.sessions.UserID(ctx)

	cookie, err := s.sessions.End(ctx)
	if err != nil {
		return session.Cookie{}, fmt.Errorf("ending session: %w", err)
	}

	if userID != "" {
		s.activity.Info(ctx, model.ActivityCategoryAuth, "Session ended", userID, "", nil)
	}
	return cookie, nil
}

// SessionUser resolves the current session to its user. It returns nil
// without error when there is no session, the user no longer exists, or
// the user is disabled; a disabled user's session is revoked.
func (s *AuthService) SessionUser(ctx context.Context) (*model.User, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return nil, nil
	}

	user, err := s.queries.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	if user.IsDisabled() {
		if _, err := s.sessions.End(ctx); err != nil {
			slog.Warn("failed to revoke disabled user session", "user_id", user.ID, "error", err)
		}
		return nil, nil
	}

	return &user, nil
}

// SessionInfo returns metadata of the current session, or nil.
func (s *AuthService) SessionInfo(ctx context.Context) *session.Info {
	return s.sessions.Current(ctx)
}

// ChangePassword replaces userID's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	if user.PasswordHash != "" {
		ok, err := auth.CheckPassword(current, user.PasswordHash)
		if err != nil || !ok {
			return &ValidationError{Fields: map[string]string{"currentPassword": "Current password is incorrect"}}
		}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.queries.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("saving password: %w", err)
	}

	s.activity.Info(ctx, model.ActivityCategoryAuth, "Password changed", userID, "", nil)
	return nil
}
