// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/innovationlab/innolab/internal/cache"
	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/imaging"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/session"
	"github.com/innovationlab/innolab/internal/testutil"
)

// testEnv is a full API stack behind an httptest server.
type testEnv struct {
	db        *sql.DB
	srv       *httptest.Server
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	activity := service.NewActivityService(db)
	sessions := session.New(db, time.Hour, true)
	authSvc := service.NewAuthService(db, sessions, nil, activity)

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
	})
	t.Cleanup(lp.Close)

	backend := cache.NewMemoryCache(cache.MemoryOptions{DefaultTTL: time.Minute, MaxSize: 100})
	t.Cleanup(func() { _ = backend.Close() })

	uploadDir := t.TempDir()
	h := NewHandler(Deps{
		DB:              db,
		Auth:            authSvc,
		Activity:        activity,
		LoginProtection: lp,
		ContactLimiter:  middleware.NewRateLimiter("contact", 1000, 1000),
		Responses:       cache.NewResponses(backend, time.Minute, testutil.TestLogger()),
		Images:          imaging.NewProcessor(uploadDir),
	})

	r := chi.NewRouter()
	r.Use(sessions.Load)
	r.Use(middleware.CurrentUser(authSvc))
	r.Mount("/api", h.Routes(handler.NewHealthHandler(db, nil, uploadDir)))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{db: db, srv: srv, uploadDir: uploadDir}
}

// client returns an anonymous client with its own cookie jar.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// userClient creates a user with role and returns a signed-in client.
func (e *testEnv) userClient(t *testing.T, email, role string) (*http.Client, string) {
	t.Helper()
	id := testutil.CreateUser(t, e.db, email, role)
	c := e.client(t)
	res := e.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": testutil.TestPassword,
	})
	require.Equal(t, http.StatusOK, res.status, res.raw)
	return c, id
}

type testResponse struct {
	status int
	header http.Header
	raw    string
}

// do sends body as JSON (nil sends no body) and reads the response.
func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any) testResponse {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, c, req)
}

func (e *testEnv) send(t *testing.T, c *http.Client, req *http.Request) testResponse {
	t.Helper()
	res, err := c.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return testResponse{status: res.StatusCode, header: res.Header, raw: string(raw)}
}

// envelope decodes {data, meta} into typed values.
type envelope[T any] struct {
	Data T     `json:"data"`
	Meta *Meta `json:"meta"`
}

func decode[T any](t *testing.T, res testResponse) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal([]byte(res.raw), &env), res.raw)
	return env
}

func decodeError(t *testing.T, res testResponse) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(res.raw), &e), res.raw)
	return e
}
