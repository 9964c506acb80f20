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

const newsSelect = `SELECT n.id, n.title, n.slug, n.excerpt, n.content, n.cover_image_url, n.status,
	n.published_at, n.author_id, n.created_at, n.updated_at, ` + ownerSelect + `
	FROM news n LEFT JOIN users u ON u.id = n.author_id`

func scanNews(s rowScanner) (model.News, error) {
	var (
		n                      model.News
		excerpt, cover, author sql.NullString
		published              sql.NullTime
		owner                  ownerCols
	)
	dest := append([]any{&n.ID, &n.Title, &n.Slug, &excerpt, &n.Content, &cover, &n.Status,
		&published, &author, &n.CreatedAt, &n.UpdatedAt}, owner.dest()...)
	if err := s.Scan(dest...); err != nil {
		return n, err
	}
	n.Excerpt = util.StringPtr(excerpt)
	n.CoverImageURL = util.StringPtr(cover)
	n.PublishedAt = util.TimePtr(published)
	n.AuthorID = util.StringPtr(author)
	n.Author = owner.ref()
	n.CreatedAt, n.UpdatedAt = n.CreatedAt.UTC(), n.UpdatedAt.UTC()
	return n, nil
}

// NewsParams holds the writable columns of a news article.
type NewsParams struct {
	Title         string
	Slug          string
	Excerpt       *string
	Content       string
	CoverImageURL *string
	Status        string
	PublishedAt   *time.Time
	AuthorID      *string
}

// CreateNews inserts an article and returns its id.
func (q *Queries) CreateNews(ctx context.Context, arg NewsParams) (string, error) {
	id := uuid.NewString()
	now := q.now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO news (id, title, slug, excerpt, content, cover_image_url, status, published_at, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Title, arg.Slug, util.NullStringFromPtr(arg.Excerpt), arg.Content,
		util.NullStringFromPtr(arg.CoverImageURL), arg.Status, util.NullTimeFromPtr(arg.PublishedAt),
		util.NullStringFromPtr(arg.AuthorID), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting news: %w", asDuplicate(err))
	}
	return id, nil
}

// UpdateNews overwrites the writable columns of an article.
func (q *Queries) UpdateNews(ctx context.Context, id string, arg NewsParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE news SET title = ?, slug = ?, excerpt = ?, content = ?, cover_image_url = ?, status = ?,
		 published_at = ?, updated_at = ? WHERE id = ?`,
		arg.Title, arg.Slug, util.NullStringFromPtr(arg.Excerpt), arg.Content,
		util.NullStringFromPtr(arg.CoverImageURL), arg.Status, util.NullTimeFromPtr(arg.PublishedAt),
		q.now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating news: %w", asDuplicate(err))
	}
	return checkAffected(res)
}

// DeleteNews removes an article.
func (q *Queries) DeleteNews(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM news WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting news: %w", err)
	}
	return checkAffected(res)
}

// GetNewsByID returns an article joined with its author.
func (q *Queries) GetNewsByID(ctx context.Context, id string) (model.News, error) {
	return scanNews(q.db.QueryRowContext(ctx, newsSelect+" WHERE n.id = ?", id))
}

// GetNewsBySlug returns an article by slug.
func (q *Queries) GetNewsBySlug(ctx context.Context, slug string) (model.News, error) {
	return scanNews(q.db.QueryRowContext(ctx, newsSelect+" WHERE n.slug = ?", slug))
}

// NewsFilter selects articles. Statuses restricts to a set, used to force
// published-only reads.
type NewsFilter struct {
	Page
	Status        string
	Statuses      []string
	Search        string
	Slug          string
	AuthorID      string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
}

// ListNews returns one page of articles, newest first, and the total count.
func (q *Queries) ListNews(ctx context.Context, f NewsFilter) ([]model.News, int64, error) {
	w := &Where{}
	if f.Status != "" {
		w.Eq("n.status", f.Status)
	}
	if f.Statuses != nil {
		w.In("n.status", f.Statuses)
	}
	if f.Slug != "" {
		w.Eq("n.slug", f.Slug)
	}
	if f.AuthorID != "" {
		w.Eq("n.author_id", f.AuthorID)
	}
	if f.PublishedFrom != nil {
		w.Since("n.published_at", *f.PublishedFrom)
	}
	if f.PublishedTo != nil {
		w.Until("n.published_at", *f.PublishedTo)
	}
	w.Search(f.Search, "n.title", "n.excerpt", "n.content")

	total, err := q.count(ctx, "news n", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting news: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		newsSelect+w.SQL()+" ORDER BY COALESCE(n.published_at, n.created_at) DESC, n.id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing news: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
