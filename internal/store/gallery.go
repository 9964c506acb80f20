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

const gallerySelect = `SELECT g.id, g.title, g.description, g.image_url, g.thumbnail_url, g.alt_text, g.width,
	g.height, g.status, g.published_at, g.uploaded_by_id, g.created_at, g.updated_at, ` + ownerSelect + `
	FROM gallery_images g LEFT JOIN users u ON u.id = g.uploaded_by_id`

func scanGalleryImage(s rowScanner) (model.GalleryImage, error) {
	var (
		g                                 model.GalleryImage
		description, thumb, alt, uploader sql.NullString
		width, height                     sql.NullInt64
		published                         sql.NullTime
		owner                             ownerCols
	)
	dest := append([]any{&g.ID, &g.Title, &description, &g.ImageURL, &thumb, &alt, &width,
		&height, &g.Status, &published, &uploader, &g.CreatedAt, &g.UpdatedAt}, owner.dest()...)
	if err := s.Scan(dest...); err != nil {
		return g, err
	}
	g.Description = util.StringPtr(description)
	g.ThumbnailURL = util.StringPtr(thumb)
	g.AltText = util.StringPtr(alt)
	g.Width = util.Int64Ptr(width)
	g.Height = util.Int64Ptr(height)
	g.PublishedAt = util.TimePtr(published)
	g.UploadedByID = util.StringPtr(uploader)
	g.UploadedBy = owner.ref()
	g.CreatedAt, g.UpdatedAt = g.CreatedAt.UTC(), g.UpdatedAt.UTC()
	return g, nil
}

// GalleryImageParams holds the writable columns of a gallery image.
type GalleryImageParams struct {
	Title        string
	Description  *string
	ImageURL     string
	ThumbnailURL *string
	AltText      *string
	Width        *int64
	Height       *int64
	Status       string
	PublishedAt  *time.Time
	UploadedByID *string
}

// CreateGalleryImage inserts a gallery image and returns its id.
func (q *Queries) CreateGalleryImage(ctx context.Context, arg GalleryImageParams) (string, error) {
	id := uuid.NewString()
	now := q.now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO gallery_images (id, title, description, image_url, thumbnail_url, alt_text, width, height,
		 status, published_at, uploaded_by_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Title, util.NullStringFromPtr(arg.Description), arg.ImageURL,
		util.NullStringFromPtr(arg.ThumbnailURL), util.NullStringFromPtr(arg.AltText),
		util.NullInt64FromPtr(arg.Width), util.NullInt64FromPtr(arg.Height), arg.Status,
		util.NullTimeFromPtr(arg.PublishedAt), util.NullStringFromPtr(arg.UploadedByID), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting gallery image: %w", err)
	}
	return id, nil
}

// UpdateGalleryImage overwrites the writable columns of a gallery image.
func (q *Queries) UpdateGalleryImage(ctx context.Context, id string, arg GalleryImageParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE gallery_images SET title = ?, description = ?, image_url = ?, thumbnail_url = ?, alt_text = ?,
		 width = ?, height = ?, status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		arg.Title, util.NullStringFromPtr(arg.Description), arg.ImageURL,
		util.NullStringFromPtr(arg.ThumbnailURL), util.NullStringFromPtr(arg.AltText),
		util.NullInt64FromPtr(arg.Width), util.NullInt64FromPtr(arg.Height), arg.Status,
		util.NullTimeFromPtr(arg.PublishedAt), q.now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating gallery image: %w", err)
	}
	return checkAffected(res)
}

// DeleteGalleryImage removes a gallery image row. Files on disk are left
// to the caller.
func (q *Queries) DeleteGalleryImage(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM gallery_images WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting gallery image: %w", err)
	}
	return checkAffected(res)
}

// GetGalleryImageByID returns a gallery image joined with its uploader.
func (q *Queries) GetGalleryImageByID(ctx context.Context, id string) (model.GalleryImage, error) {
	return scanGalleryImage(q.db.QueryRowContext(ctx, gallerySelect+" WHERE g.id = ?", id))
}

// GalleryFilter selects gallery images. From/To bound created_at.
type GalleryFilter struct {
	Page
	Status       string
	Statuses     []string
	Search       string
	UploadedByID string
	From         *time.Time
	To           *time.Time
}

// ListGalleryImages returns one page of images, newest first.
func (q *Queries) ListGalleryImages(ctx context.Context, f GalleryFilter) ([]model.GalleryImage, int64, error) {
	w := &Where{}
	if f.Status != "" {
		w.Eq("g.status", f.Status)
	}
	if f.Statuses != nil {
		w.In("g.status", f.Statuses)
	}
	if f.UploadedByID != "" {
		w.Eq("g.uploaded_by_id", f.UploadedByID)
	}
	if f.From != nil {
		w.Since("g.created_at", *f.From)
	}
	if f.To != nil {
		w.Until("g.created_at", *f.To)
	}
	w.Search(f.Search, "g.title", "g.description", "g.alt_text")

	total, err := q.count(ctx, "gallery_images g", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting gallery images: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		gallerySelect+w.SQL()+" ORDER BY g.created_at DESC, g.id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing gallery images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.GalleryImage{}
	for rows.Next() {
		g, err := scanGalleryImage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}
