// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request protection.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the *model.User resolved from the session cookie.
const ContextKeyUser ContextKey = "user"

// UserResolver resolves the session in ctx to an active user, or nil.
type UserResolver interface {
	SessionUser(ctx context.Context) (*model.User, error)
}

// errorBody mirrors the API failure envelope.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSONError writes a failure envelope.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: message})
}

// CurrentUser resolves the session user once per request and stores it in
// the context. It never rejects a request: anonymous requests pass through.
// It must run after session.Manager.Load.
func CurrentUser(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.SessionUser(r.Context())
			if err != nil {
				slog.Error("resolving session user", "error", err, "path", r.URL.Path)
				WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the current user, or nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(ContextKeyUser).(*model.User)
	return user
}

// GetUserID returns the current user's ID or "".
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a copy of ctx carrying user. Used by tests and by
// handlers that act on behalf of a freshly authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// IsAnonymous reports whether no user is attached to the request.
func IsAnonymous(r *http.Request) bool {
	return GetUser(r) == nil
}

// RequireUser rejects anonymous requests with 401 and, when roles are given,
// users outside them with 403.
func RequireUser(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !auth.HasRole(user, roles...) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_roles", roles,
				)
				WriteJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
