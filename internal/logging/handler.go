// Package logging provides a slog handler that mirrors warnings and errors
// into the activity log so administrators can see them through the API.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/store"
)

// ActivityLogHandler wraps another handler and additionally persists records
// at or above its level.
type ActivityLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
	group   string
}

// NewActivityLogHandler forwards WARN and above to the activity log.
func NewActivityLogHandler(inner slog.Handler, db *sql.DB) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel uses a custom persistence threshold.
func NewActivityLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{inner: inner, queries: store.New(db), level: level}
}

func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.inner.Enabled(ctx, r.Level) {
		err = h.inner.Handle(ctx, r)
	}
	if r.Level >= h.level {
		h.persist(r)
	}
	return err
}

func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &c
}

func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return &c
}

func (h *ActivityLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// persist writes with a fresh context: the request that logged may already
// be cancelled.
func (h *ActivityLogHandler) persist(r slog.Record) {
	all := append([]slog.Attr(nil), h.attrs...)
	var recAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	all = append(all, h.qualify(recAttrs)...)

	category := ""
	var userID, ip *string
	metadata := make(map[string]any, len(all))
	for _, a := range all {
		switch a.Key {
		case "category":
			category = a.Value.String()
		case "user_id":
			v := a.Value.String()
			userID = &v
		case "ip":
			v := a.Value.String()
			ip = &v
		default:
			metadata[a.Key] = attrValue(a.Value)
		}
	}
	if category == "" {
		category = inferCategory(r.Message)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.queries.CreateActivity(ctx, store.CreateActivityParams{
		Level:     activityLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		IPAddress: ip,
		Metadata:  metadata,
	})
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindGroup:
		m := make(map[string]any)
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.String()
	}
}

func activityLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "session") || strings.Contains(msg, "auth"):
		return model.ActivityCategoryAuth
	case strings.Contains(msg, "contact"):
		return model.ActivityCategoryContact
	case strings.Contains(msg, "communit"):
		return model.ActivityCategoryCommunity
	case strings.Contains(msg, "user"):
		return model.ActivityCategoryUser
	case strings.Contains(msg, "news") || strings.Contains(msg, "event") ||
		strings.Contains(msg, "testimonial") || strings.Contains(msg, "gallery"):
		return model.ActivityCategoryContent
	default:
		return model.ActivityCategorySystem
	}
}
