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

const testimonialSelect = `SELECT t.id, t.author_name, t.author_title, t.company, t.quote, t.avatar_url, t.rating,
	t.status, t.published_at, t.submitted_by_id, t.created_at, t.updated_at, ` + ownerSelect + `
	FROM testimonials t LEFT JOIN users u ON u.id = t.submitted_by_id`

func scanTestimonial(s rowScanner) (model.Testimonial, error) {
	var (
		t                                       model.Testimonial
		authorTitle, company, avatar, submitter sql.NullString
		rating                                  sql.NullInt64
		published                               sql.NullTime
		owner                                   ownerCols
	)
	dest := append([]any{&t.ID, &t.AuthorName, &authorTitle, &company, &t.Quote, &avatar, &rating,
		&t.Status, &published, &submitter, &t.CreatedAt, &t.UpdatedAt}, owner.dest()...)
	if err := s.Scan(dest...); err != nil {
		return t, err
	}
	t.AuthorTitle = util.StringPtr(authorTitle)
	t.Company = util.StringPtr(company)
	t.AvatarURL = util.StringPtr(avatar)
	t.Rating = util.Int64Ptr(rating)
	t.PublishedAt = util.TimePtr(published)
	t.SubmittedByID = util.StringPtr(submitter)
	t.SubmittedBy = owner.ref()
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}

// TestimonialParams holds the writable columns of a testimonial.
type TestimonialParams struct {
	AuthorName    string
	AuthorTitle   *string
	Company       *string
	Quote         string
	AvatarURL     *string
	Rating        *int64
	Status        string
	PublishedAt   *time.Time
	SubmittedByID *string
}

// CreateTestimonial inserts a testimonial and returns its id.
func (q *Queries) CreateTestimonial(ctx context.Context, arg TestimonialParams) (string, error) {
	id := uuid.NewString()
	now := q.now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO testimonials (id, author_name, author_title, company, quote, avatar_url, rating, status,
		 published_at, submitted_by_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.AuthorName, util.NullStringFromPtr(arg.AuthorTitle), util.NullStringFromPtr(arg.Company),
		arg.Quote, util.NullStringFromPtr(arg.AvatarURL), util.NullInt64FromPtr(arg.Rating), arg.Status,
		util.NullTimeFromPtr(arg.PublishedAt), util.NullStringFromPtr(arg.SubmittedByID), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting testimonial: %w", err)
	}
	return id, nil
}

// UpdateTestimonial overwrites the writable columns of a testimonial.
func (q *Queries) UpdateTestimonial(ctx context.Context, id string, arg TestimonialParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE testimonials SET author_name = ?, author_title = ?, company = ?, quote = ?, avatar_url = ?,
		 rating = ?, status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		arg.AuthorName, util.NullStringFromPtr(arg.AuthorTitle), util.NullStringFromPtr(arg.Company),
		arg.Quote, util.NullStringFromPtr(arg.AvatarURL), util.NullInt64FromPtr(arg.Rating), arg.Status,
		util.NullTimeFromPtr(arg.PublishedAt), q.now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating testimonial: %w", err)
	}
	return checkAffected(res)
}

// DeleteTestimonial removes a testimonial.
func (q *Queries) DeleteTestimonial(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM testimonials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting testimonial: %w", err)
	}
	return checkAffected(res)
}

// GetTestimonialByID returns a testimonial joined with its submitter.
func (q *Queries) GetTestimonialByID(ctx context.Context, id string) (model.Testimonial, error) {
	return scanTestimonial(q.db.QueryRowContext(ctx, testimonialSelect+" WHERE t.id = ?", id))
}

// TestimonialFilter selects testimonials.
type TestimonialFilter struct {
	Page
	Status        string
	Statuses      []string
	Search        string
	SubmittedByID string
	Rating        *int64
}

// ListTestimonials returns one page of testimonials, newest first.
func (q *Queries) ListTestimonials(ctx context.Context, f TestimonialFilter) ([]model.Testimonial, int64, error) {
	w := &Where{}
	if f.Status != "" {
		w.Eq("t.status", f.Status)
	}
	if f.Statuses != nil {
		w.In("t.status", f.Statuses)
	}
	if f.SubmittedByID != "" {
		w.Eq("t.submitted_by_id", f.SubmittedByID)
	}
	if f.Rating != nil {
		w.Eq("t.rating", *f.Rating)
	}
	w.Search(f.Search, "t.author_name", "t.company", "t.quote")

	total, err := q.count(ctx, "testimonials t", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting testimonials: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		testimonialSelect+w.SQL()+" ORDER BY COALESCE(t.published_at, t.created_at) DESC, t.id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing testimonials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
