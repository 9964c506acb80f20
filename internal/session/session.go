// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session wraps scs with a SQLite store. A request's session is
// loaded by Load and written only by Start and End, which hand back cookie
// descriptors for the caller to set.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// CookieName is the name of the session cookie.
const CookieName = "innolab_session"

// Session data keys.
const (
	keyUserID    = "user_id"
	keyCreatedAt = "created_at"
	keyUserAgent = "user_agent"
	keyIP        = "ip"
	keyCountry   = "country"
)

// Manager issues, resolves and revokes sessions.
type Manager struct {
	sm *scs.SessionManager
}

// New creates a Manager backed by the sessions table. Expired rows are
// purged by the scheduler, so the store's own cleanup goroutine is off.
func New(db *sql.DB, lifetime time.Duration, isDev bool) *Manager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, 0)

	sm.Lifetime = lifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	return &Manager{sm: sm}
}

// Meta is client metadata recorded when a session starts.
type Meta struct {
	UserAgent string
	IP        string
	Country   string
}

// Info describes the session attached to a request.
type Info struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserAgent string    `json:"userAgent"`
	IP        string    `json:"ipAddress"`
	Country   string    `json:"country,omitempty"`
}

// Cookie describes the Set-Cookie a response must carry.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Expires  time.Time
	MaxAge   int
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// HTTP converts the descriptor into an *http.Cookie.
func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expires,
		MaxAge:   c.MaxAge,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) Cookie {
	return Cookie{
		Name:     m.sm.Cookie.Name,
		Value:    value,
		Path:     m.sm.Cookie.Path,
		Expires:  expires,
		MaxAge:   maxAge,
		HTTPOnly: m.sm.Cookie.HttpOnly,
		Secure:   m.sm.Cookie.Secure,
		SameSite: m.sm.Cookie.SameSite,
	}
}

// Load attaches the session named by the request cookie to the request
// context. A missing, unknown or expired token yields an empty session.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(m.sm.Cookie.Name); err == nil {
			token = c.Value
		}

		ctx, err := m.sm.Load(r.Context(), token)
		if err != nil {
			m.sm.ErrorFunc(w, r, err)
			return
		}

		w.Header().Add("Vary", "Cookie")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start binds userID to a fresh session token and persists it. The old
// token, if any, is discarded to prevent fixation.
func (m *Manager) Start(ctx context.Context, userID string, meta Meta, now time.Time) (Cookie, error) {
	if err := m.sm.RenewToken(ctx); err != nil {
		return Cookie{}, err
	}

	m.sm.Put(ctx, keyUserID, userID)
	m.sm.Put(ctx, keyCreatedAt, now.UTC().Unix())
	m.sm.Put(ctx, keyUserAgent, meta.UserAgent)
	m.sm.Put(ctx, keyIP, meta.IP)
	m.sm.Put(ctx, keyCountry, meta.Country)

	token, expiry, err := m.sm.Commit(ctx)
	if err != nil {
		return Cookie{}, err
	}

	return m.cookie(token, expiry.UTC(), int(time.Until(expiry).Seconds())), nil
}

// End deletes the current session, if any, and returns a clearing cookie.
func (m *Manager) End(ctx context.Context) (Cookie, error) {
	if m.sm.Token(ctx) != "" {
		if err := m.sm.Destroy(ctx); err != nil {
			return Cookie{}, err
		}
	}
	return m.cookie("", time.Unix(1, 0).UTC(), -1), nil
}

// UserID returns the user bound to the current session, or "".
func (m *Manager) UserID(ctx context.Context) string {
	return m.sm.GetString(ctx, keyUserID)
}

// Current returns the current session's metadata, or nil when the request
// carries no authenticated session.
func (m *Manager) Current(ctx context.Context) *Info {
	userID := m.UserID(ctx)
	if userID == "" {
		return nil
	}
	return &Info{
		UserID:    userID,
		CreatedAt: time.Unix(m.sm.GetInt64(ctx, keyCreatedAt), 0).UTC(),
		ExpiresAt: m.sm.Deadline(ctx).UTC(),
		UserAgent: m.sm.GetString(ctx, keyUserAgent),
		IP:        m.sm.GetString(ctx, keyIP),
		Country:   m.sm.GetString(ctx, keyCountry),
	}
}

// Lifetime returns the absolute session lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.sm.Lifetime
}
