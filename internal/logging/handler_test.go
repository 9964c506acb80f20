package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{ level slog.Level }

func (h discardHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h discardHandler) Handle(context.Context, slog.Record) error    { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler           { return h }
func (h discardHandler) WithGroup(string) slog.Handler                { return h }

func listActivity(t *testing.T, q *store.Queries) []model.ActivityEntry {
	t.Helper()
	entries, _, err := q.ListActivity(context.Background(), store.ActivityFilter{Page: store.Page{Limit: 50}})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	return entries
}

func TestActivityLogHandler_PersistsWarnAndAbove(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db))

	logger.Info("server started")
	logger.Debug("noise")
	if got := listActivity(t, q); len(got) != 0 {
		t.Fatalf("info/debug should not be persisted, got %d", len(got))
	}

	logger.Error("database connection failed", "host", "localhost", "port", 5432, "error", errors.New("refused"))
	logger.Warn("login rate limit exceeded", "ip", "203.0.113.9")

	entries := listActivity(t, q)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	byMsg := map[string]model.ActivityEntry{}
	for _, e := range entries {
		byMsg[e.Message] = e
	}

	dbErr := byMsg["database connection failed"]
	if dbErr.Level != model.ActivityLevelError || dbErr.Category != model.ActivityCategorySystem {
		t.Errorf("error entry = %s/%s", dbErr.Level, dbErr.Category)
	}
	if dbErr.Metadata["host"] != "localhost" || dbErr.Metadata["error"] != "refused" {
		t.Errorf("metadata = %v", dbErr.Metadata)
	}
	// JSON numbers come back as float64.
	if dbErr.Metadata["port"] != float64(5432) {
		t.Errorf("port = %#v", dbErr.Metadata["port"])
	}

	login := byMsg["login rate limit exceeded"]
	if login.Level != model.ActivityLevelWarning || login.Category != model.ActivityCategoryAuth {
		t.Errorf("warn entry = %s/%s", login.Level, login.Category)
	}
	if login.IPAddress == nil || *login.IPAddress != "203.0.113.9" {
		t.Errorf("IPAddress = %v", login.IPAddress)
	}
}

func TestActivityLogHandler_KeepsAttachedAttrs(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	logger := slog.New(NewActivityLogHandler(discardHandler{}, db)).
		With("category", model.ActivityCategoryContact).
		WithGroup("req").
		With("path", "/api/contact")

	logger.Warn("something odd", "id", "abc")

	entries := listActivity(t, q)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Category != model.ActivityCategoryContact {
		t.Errorf("Category = %q", e.Category)
	}
	if e.Metadata["req.path"] != "/api/contact" || e.Metadata["req.id"] != "abc" {
		t.Errorf("metadata = %v", e.Metadata)
	}
}

func TestActivityLogHandler_Enabled(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewActivityLogHandler(discardHandler{level: slog.LevelError}, db)
	ctx := context.Background()

	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn must stay enabled for persistence even if the inner handler drops it")
	}
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should follow the inner handler")
	}
}

func TestInferCategory(t *testing.T) {
	tests := map[string]string{
		"Login failed":           model.ActivityCategoryAuth,
		"contact form rejected":  model.ActivityCategoryContact,
		"community member added": model.ActivityCategoryCommunity,
		"user disabled":          model.ActivityCategoryUser,
		"news render failed":     model.ActivityCategoryContent,
		"disk almost full":       model.ActivityCategorySystem,
	}
	for msg, want := range tests {
		if got := inferCategory(msg); got != want {
			t.Errorf("inferCategory(%q) = %q, want %q", msg, got, want)
		}
	}
}
