// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/testutil"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestHealthHandler(t *testing.T, cache Pinger) *HealthHandler {
	t.Helper()
	return NewHealthHandler(testutil.TestDB(t), cache, t.TempDir())
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestHealthHandler_Health_Public(t *testing.T) {
	h := newTestHealthHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}

	resp := decodeHealth(t, w)
	if resp.Status != StatusHealthy {
		t.Errorf("status = %q; want healthy", resp.Status)
	}
	if resp.Version == "" {
		t.Error("version should be reported")
	}
	if resp.Checks != nil || resp.Uptime != "" {
		t.Error("anonymous callers must not see check details")
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	h := newTestHealthHandler(t, stubPinger{err: errors.New("connection refused")})

	admin := &model.User{ID: "a1", Role: model.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/api/health?verbose=true", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), admin))
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (cache failures only degrade)", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Status != StatusDegraded {
		t.Errorf("status = %q; want degraded", resp.Status)
	}
	if resp.Checks["database"].Status != StatusHealthy {
		t.Errorf("database check = %+v", resp.Checks["database"])
	}
	if resp.Checks["cache"].Status != StatusDegraded {
		t.Errorf("cache check = %+v", resp.Checks["cache"])
	}
	if resp.System == nil || resp.System.GoVersion == "" {
		t.Error("verbose admin response should include system info")
	}
}

func TestHealthHandler_Health_DatabaseDown(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, nil, filepath.Join(t.TempDir(), "missing"))
	_ = db.Close()

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", w.Code)
	}
	if resp := decodeHealth(t, w); resp.Status != StatusUnhealthy {
		t.Errorf("status = %q; want unhealthy", resp.Status)
	}
}

func TestHealthHandler_LivenessReadiness(t *testing.T) {
	h := newTestHealthHandler(t, nil)

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("liveness status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("readiness status = %d", w.Code)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
