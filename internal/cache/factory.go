package cache

import (
	"context"
	"log/slog"
	"time"
)

// Config selects and sizes a backend.
type Config struct {
	RedisURL string
	Prefix   string
	TTL      time.Duration
	MaxSize  int
}

// New returns a Redis cache when RedisURL is set and reachable, and a
// memory cache otherwise. A Redis failure is logged, not fatal.
func New(ctx context.Context, cfg Config, logger *slog.Logger) Cache {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(ctx, RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.TTL,
		})
		if err == nil {
			logger.Info("response cache using redis", "prefix", cfg.Prefix)
			return rc
		}
		logger.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	logger.Info("response cache using memory", "max_size", cfg.MaxSize, "ttl", cfg.TTL)
	return NewMemoryCache(MemoryOptions{
		DefaultTTL:      cfg.TTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	})
}
