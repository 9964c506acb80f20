package cache

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResponses_Middleware(t *testing.T) {
	store := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = store.Close() }()
	rc := NewResponses(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	calls := 0
	status := http.StatusOK
	h := rc.Middleware(func(r *http.Request) bool {
		return r.Header.Get("Cookie") != ""
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	get := func(target string, cookie bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if cookie {
			req.Header.Set("Cookie", "innolab_session=x")
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := get("/api/news?limit=5&offset=0", false)
	if first.Header().Get("X-Cache") != "MISS" || calls != 1 {
		t.Fatalf("first request: X-Cache=%q calls=%d", first.Header().Get("X-Cache"), calls)
	}

	// Same query in a different order hits the same entry.
	second := get("/api/news?offset=0&limit=5", false)
	if second.Header().Get("X-Cache") != "HIT" || calls != 1 {
		t.Fatalf("second request: X-Cache=%q calls=%d", second.Header().Get("X-Cache"), calls)
	}
	if second.Body.String() != `{"data":[]}` || second.Header().Get("Content-Type") != "application/json" {
		t.Errorf("cached response = %q (%s)", second.Body.String(), second.Header().Get("Content-Type"))
	}

	get("/api/news?limit=5&offset=0", true)
	if calls != 2 {
		t.Errorf("bypassed request should reach the handler, calls=%d", calls)
	}

	rc.Invalidate(context.Background())
	get("/api/news?limit=5&offset=0", false)
	if calls != 3 {
		t.Errorf("request after Invalidate should miss, calls=%d", calls)
	}

	status = http.StatusNotFound
	get("/api/news/missing", false)
	get("/api/news/missing", false)
	if calls != 5 {
		t.Errorf("non-200 responses must not be cached, calls=%d", calls)
	}
}

func TestResponses_InvalidateDuringRequest(t *testing.T) {
	store := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = store.Close() }()
	rc := NewResponses(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	calls := 0
	h := rc.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// A write commits and invalidates after this handler read its data.
		if calls == 1 {
			rc.Invalidate(r.Context())
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))
		if got := rr.Header().Get("X-Cache"); got != "MISS" {
			t.Fatalf("request %d: X-Cache = %q, want MISS", i+1, got)
		}
	}
	if calls != 2 {
		t.Errorf("stale response was served from cache, calls=%d", calls)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if rr.Header().Get("X-Cache") != "HIT" {
		t.Errorf("response rendered after the invalidation should be cached")
	}
}
