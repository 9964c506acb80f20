package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const responsePrefix = "resp:"

// Responses caches successful GET responses of the public API. Callers
// decide which requests are cacheable; any content mutation must call
// Invalidate.
type Responses struct {
	store  Cache
	ttl    time.Duration
	logger *slog.Logger

	// gen increases on every Invalidate. A response rendered across an
	// Invalidate is not stored.
	mu  sync.RWMutex
	gen uint64
}

type cachedResponse struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"body"`
}

// NewResponses wraps a backend.
func NewResponses(store Cache, ttl time.Duration, logger *slog.Logger) *Responses {
	return &Responses{store: store, ttl: ttl, logger: logger}
}

// Key is the cache key of a request: path plus canonical query.
func Key(r *http.Request) string {
	return responsePrefix + r.URL.Path + "?" + r.URL.Query().Encode()
}

// Middleware serves GET requests from the cache unless bypass reports true.
// Only 200 responses are stored.
func (c *Responses) Middleware(bypass func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || (bypass != nil && bypass(r)) {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(r)
			if raw, err := c.store.Get(r.Context(), key); err == nil {
				var cr cachedResponse
				if json.Unmarshal(raw, &cr) == nil {
					w.Header().Set("Content-Type", cr.ContentType)
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write(cr.Body)
					return
				}
			} else if !errors.Is(err, ErrCacheMiss) {
				c.logger.Warn("response cache read failed", "error", err)
			}

			w.Header().Set("X-Cache", "MISS")
			gen := c.generation()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status != http.StatusOK {
				return
			}

			raw, err := json.Marshal(cachedResponse{
				ContentType: w.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return
			}
			c.storeIfCurrent(r.Context(), gen, key, raw)
		})
	}
}

func (c *Responses) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// storeIfCurrent writes raw unless the cache was invalidated after gen was read.
func (c *Responses) storeIfCurrent(ctx context.Context, gen uint64, key string, raw []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.gen != gen {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("response cache write failed", "error", err)
	}
}

// Invalidate drops every cached response.
func (c *Responses) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("response cache clear failed", "error", err)
	}
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
