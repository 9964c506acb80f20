package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/util"
)

const eventSelect = `SELECT e.id, e.title, e.slug, e.description, e.location, e.is_virtual, e.meeting_url,
	e.registration_url, e.cover_image_url, e.starts_at, e.ends_at, e.status, e.published_at,
	e.organizer_id, e.created_at, e.updated_at, ` + ownerSelect + `
	FROM events e LEFT JOIN users u ON u.id = e.organizer_id`

func scanEvent(s rowScanner) (model.Event, error) {
	var (
		e                                      model.Event
		location, meeting, registration, cover sql.NullString
		organizer                              sql.NullString
		endsAt, published                      sql.NullTime
		owner                                  ownerCols
	)
	dest := append([]any{&e.ID, &e.Title, &e.Slug, &e.Description, &location, &e.IsVirtual, &meeting,
		&registration, &cover, &e.StartsAt, &endsAt, &e.Status, &published,
		&organizer, &e.CreatedAt, &e.UpdatedAt}, owner.dest()...)
	if err := s.Scan(dest...); err != nil {
		return e, err
	}
	e.Location = util.StringPtr(location)
	e.MeetingURL = util.StringPtr(meeting)
	e.RegistrationURL = util.StringPtr(registration)
	e.CoverImageURL = util.StringPtr(cover)
	e.EndsAt = util.TimePtr(endsAt)
	e.PublishedAt = util.TimePtr(published)
	e.OrganizerID = util.StringPtr(organizer)
	e.Organizer = owner.ref()
	e.StartsAt = e.StartsAt.UTC()
	e.CreatedAt, e.UpdatedAt = e.CreatedAt.UTC(), e.UpdatedAt.UTC()
	return e, nil
}

// EventParams holds the writable columns of an event.
type EventParams struct {
	Title           string
	Slug            string
	Description     string
	Location        *string
	IsVirtual       bool
	MeetingURL      *string
	RegistrationURL *string
	CoverImageURL   *string
	StartsAt        time.Time
	EndsAt          *time.Time
	Status          string
	PublishedAt     *time.Time
	OrganizerID     *string
}

// CreateEvent inserts an event and returns its id.
func (q *Queries) CreateEvent(ctx context.Context, arg EventParams) (string, error) {
	id := uuid.NewString()
	now := q.now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (id, title, slug, description, location, is_virtual, meeting_url, registration_url,
		 cover_image_url, starts_at, ends_at, status, published_at, organizer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Title, arg.Slug, arg.Description, util.NullStringFromPtr(arg.Location), arg.IsVirtual,
		util.NullStringFromPtr(arg.MeetingURL), util.NullStringFromPtr(arg.RegistrationURL),
		util.NullStringFromPtr(arg.CoverImageURL), arg.StartsAt.UTC(), util.NullTimeFromPtr(arg.EndsAt),
		arg.Status, util.NullTimeFromPtr(arg.PublishedAt), util.NullStringFromPtr(arg.OrganizerID), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting event: %w", asDuplicate(err))
	}
	return id, nil
}

// UpdateEvent overwrites the writable columns of an event.
func (q *Queries) UpdateEvent(ctx context.Context, id string, arg EventParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE events SET title = ?, slug = ?, description = ?, location = ?, is_virtual = ?, meeting_url = ?,
		 registration_url = ?, cover_image_url = ?, starts_at = ?, ends_at = ?, status = ?, published_at = ?,
		 updated_at = ? WHERE id = ?`,
		arg.Title, arg.Slug, arg.Description, util.NullStringFromPtr(arg.Location), arg.IsVirtual,
		util.NullStringFromPtr(arg.MeetingURL), util.NullStringFromPtr(arg.RegistrationURL),
		util.NullStringFromPtr(arg.CoverImageURL), arg.StartsAt.UTC(), util.NullTimeFromPtr(arg.EndsAt),
		arg.Status, util.NullTimeFromPtr(arg.PublishedAt), q.now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", asDuplicate(err))
	}
	return checkAffected(res)
}

// DeleteEvent removes an event.
func (q *Queries) DeleteEvent(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return checkAffected(res)
}

// GetEventByID returns an event joined with its organizer.
func (q *Queries) GetEventByID(ctx context.Context, id string) (model.Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, eventSelect+" WHERE e.id = ?", id))
}

// GetEventBySlug returns an event by slug.
func (q *Queries) GetEventBySlug(ctx context.Context, slug string) (model.Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, eventSelect+" WHERE e.slug = ?", slug))
}

// EventFilter selects events. From/To bound starts_at.
type EventFilter struct {
	Page
	Status      string
	Statuses    []string
	Search      string
	Slug        string
	IsVirtual   *bool
	OrganizerID string
	From        *time.Time
	To          *time.Time
}

// ListEvents returns one page of events ordered by start time.
func (q *Queries) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	w := &Where{}
	if f.Status != "" {
		w.Eq("e.status", f.Status)
	}
	if f.Statuses != nil {
		w.In("e.status", f.Statuses)
	}
	if f.Slug != "" {
		w.Eq("e.slug", f.Slug)
	}
	if f.IsVirtual != nil {
		w.Eq("e.is_virtual", *f.IsVirtual)
	}
	if f.OrganizerID != "" {
		w.Eq("e.organizer_id", f.OrganizerID)
	}
	if f.From != nil {
		w.Since("e.starts_at", *f.From)
	}
	if f.To != nil {
		w.Until("e.starts_at", *f.To)
	}
	w.Search(f.Search, "e.title", "e.description", "e.location")

	total, err := q.count(ctx, "events e", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		eventSelect+w.SQL()+" ORDER BY e.starts_at ASC, e.id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// CompletePastEvents flips published events whose end (or start, when no
// end is set) is before now to completed. Returns the number changed.
func (q *Queries) CompletePastEvents(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE events SET status = ?, updated_at = ?
		 WHERE status = ? AND COALESCE(ends_at, starts_at) < ?`,
		model.StatusCompleted, q.now(), model.StatusPublished, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("completing past events: %w", err)
	}
	return res.RowsAffected()
}
