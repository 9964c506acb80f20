// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/store"
)

// Reloader is satisfied by the GeoIP resolver.
type Reloader interface {
	Reload() error
	Enabled() bool
}

// Deps wires the maintenance jobs to the rest of the application.
type Deps struct {
	DB                *sql.DB
	Activity          *service.ActivityService
	GeoIP             Reloader
	ActivityRetention time.Duration
	// OnContentChange is called after a job changed public content.
	OnContentChange func(ctx context.Context)
	Logger          *slog.Logger
}

// MaintenanceJobs returns the jobs every instance runs.
func MaintenanceJobs(d Deps) []Job {
	q := store.New(d.DB)

	jobs := []Job{
		{
			Name:        "session-cleanup",
			Description: "Delete expired sessions",
			Schedule:    "@every 15m",
			Run: func(ctx context.Context) error {
				n, err := q.DeleteExpiredSessions(ctx)
				if err != nil {
					return fmt.Errorf("deleting expired sessions: %w", err)
				}
				if n > 0 {
					d.Logger.Info("expired sessions removed", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "complete-events",
			Description: "Mark published events that have ended as completed",
			Schedule:    "@every 5m",
			Run: func(ctx context.Context) error {
				n, err := q.CompletePastEvents(ctx, time.Now().UTC())
				if err != nil {
					return fmt.Errorf("completing past events: %w", err)
				}
				if n == 0 {
					return nil
				}
				d.Activity.Info(ctx, model.ActivityCategoryContent,
					fmt.Sprintf("Marked %d past event(s) as completed", n), "", "", map[string]any{"count": n})
				if d.OnContentChange != nil {
					d.OnContentChange(ctx)
				}
				return nil
			},
		},
		{
			Name:        "prune-activity",
			Description: "Delete old activity log entries",
			Schedule:    "@daily",
			Run: func(ctx context.Context) error {
				n, err := d.Activity.Prune(ctx, d.ActivityRetention)
				if err != nil {
					return fmt.Errorf("pruning activity log: %w", err)
				}
				if n > 0 {
					d.Logger.Info("activity log pruned", "count", n)
				}
				return nil
			},
		},
	}

	if d.GeoIP != nil && d.GeoIP.Enabled() {
		jobs = append(jobs, Job{
			Name:        "geoip-reload",
			Description: "Reload the GeoIP country database",
			Schedule:    "@daily",
			Run: func(context.Context) error {
				return d.GeoIP.Reload()
			},
		})
	}

	return jobs
}
