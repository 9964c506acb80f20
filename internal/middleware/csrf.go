// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for cross-origin request protection.
// filippo.io/csrf/gorilla relies on Fetch metadata headers, so the API
// needs no token round trip.
type CSRFConfig struct {
	// AuthKey is kept for API compatibility with gorilla/csrf.
	AuthKey []byte

	// TrustedOrigins are host[:port] values allowed to send cross-origin
	// unsafe requests, e.g. the admin dashboard's origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig trusts localhost origins in development.
func DefaultCSRFConfig(authKey []byte, isDev bool, trusted []string) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey, TrustedOrigins: append([]string(nil), trusted...)}
	if isDev {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins,
			"localhost:3000", "127.0.0.1:3000",
			"localhost:8080", "127.0.0.1:8080",
		)
	}
	return cfg
}

// CSRF rejects cross-origin unsafe requests with a JSON 403.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	opts := []csrf.Option{csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler))}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteJSONError(w, http.StatusForbidden, "Forbidden: cross-origin request rejected")
}
