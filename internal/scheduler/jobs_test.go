package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/testutil"
)

type stubReloader struct {
	enabled bool
	reloads int
}

func (s *stubReloader) Reload() error { s.reloads++; return nil }
func (s *stubReloader) Enabled() bool { return s.enabled }

func setupJobs(t *testing.T, geo Reloader) (*sql.DB, *Scheduler, *int) {
	t.Helper()
	db := testutil.TestDB(t)
	changes := 0
	s := New(testLogger())
	for _, j := range MaintenanceJobs(Deps{
		DB:                db,
		Activity:          service.NewActivityService(db),
		GeoIP:             geo,
		ActivityRetention: 90 * 24 * time.Hour,
		OnContentChange:   func(context.Context) { changes++ },
		Logger:            testLogger(),
	}) {
		require.NoError(t, s.Add(j))
	}
	return db, s, &changes
}

func TestMaintenanceJobs_Registered(t *testing.T) {
	_, s, _ := setupJobs(t, &stubReloader{})
	var names []string
	for _, j := range s.List() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"complete-events", "prune-activity", "session-cleanup"}, names)

	geo := &stubReloader{enabled: true}
	_, s, _ = setupJobs(t, geo)
	require.NoError(t, s.TriggerNow(context.Background(), "geoip-reload"))
	assert.Equal(t, 1, geo.reloads)
}

func TestCompleteEventsJob(t *testing.T) {
	db, s, changes := setupJobs(t, nil)
	ctx := context.Background()
	q := store.New(db)

	past := time.Now().UTC().Add(-48 * time.Hour)
	ended := past.Add(2 * time.Hour)
	id, err := q.CreateEvent(ctx, store.EventParams{
		Title: "Hack night", Slug: "hack-night", Description: "x",
		StartsAt: past, EndsAt: &ended, Status: model.StatusPublished, PublishedAt: &past,
	})
	require.NoError(t, err)

	require.NoError(t, s.TriggerNow(ctx, "complete-events"))
	ev, err := q.GetEventByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, ev.Status)
	assert.Equal(t, 1, *changes)

	require.NoError(t, s.TriggerNow(ctx, "complete-events"))
	assert.Equal(t, 1, *changes, "no change means no invalidation")
}

func TestSessionCleanupAndPruneJobs(t *testing.T) {
	_, s, _ := setupJobs(t, nil)
	ctx := context.Background()
	require.NoError(t, s.TriggerNow(ctx, "session-cleanup"))
	require.NoError(t, s.TriggerNow(ctx, "prune-activity"))
}
