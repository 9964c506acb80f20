// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/store"
)

// ActivityService writes and reads the audit trail.
type ActivityService struct {
	queries *store.Queries
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{queries: store.New(db)}
}

// Entry is one audit event.
type Entry struct {
	Level    string
	Category string
	Message  string
	UserID   string
	IP       string
	Metadata map[string]any
}

// Log records an entry. A failure is logged and returned; callers treat
// the audit trail as best effort.
func (s *ActivityService) Log(ctx context.Context, e Entry) error {
	if e.Level == "" {
		e.Level = model.ActivityLevelInfo
	}
	err := s.queries.CreateActivity(ctx, store.CreateActivityParams{
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    optional(e.UserID),
		IPAddress: optional(e.IP),
		Metadata:  e.Metadata,
	})
	if err != nil {
		slog.Error("failed to record activity", "error", err, "category", e.Category, "message", e.Message)
	}
	return err
}

// Info records an info-level entry.
func (s *ActivityService) Info(ctx context.Context, category, message, userID, ip string, metadata map[string]any) {
	_ = s.Log(ctx, Entry{Level: model.ActivityLevelInfo, Category: category, Message: message, UserID: userID, IP: ip, Metadata: metadata})
}

// Warn records a warning-level entry.
func (s *ActivityService) Warn(ctx context.Context, category, message, userID, ip string, metadata map[string]any) {
	_ = s.Log(ctx, Entry{Level: model.ActivityLevelWarning, Category: category, Message: message, UserID: userID, IP: ip, Metadata: metadata})
}

// List returns one page of entries.
func (s *ActivityService) List(ctx context.Context, f store.ActivityFilter) ([]model.ActivityEntry, int64, error) {
	return s.queries.ListActivity(ctx, f)
}

// Prune deletes entries older than olderThan.
func (s *ActivityService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteActivityBefore(ctx, time.Now().Add(-olderThan))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
