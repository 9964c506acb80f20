// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/imaging"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
)

// multipartOverhead is allowed on top of the image limit for form fields.
const multipartOverhead = 1 << 20

// ListGallery handles GET /api/gallery.
func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.GalleryFilter{
		Page:         q.Page(handler.MaxLimitGallery),
		Status:       q.OneOf("status", model.GalleryLifecycle.Statuses),
		Statuses:     visibleStatuses(r, model.GalleryLifecycle),
		Search:       q.String("search"),
		UploadedByID: q.String("uploadedById"),
		From:         q.Since("from"),
		To:           q.Until("to"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListGalleryImages(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}

// GetGalleryImage handles GET /api/gallery/{id}.
func (h *Handler) GetGalleryImage(w http.ResponseWriter, r *http.Request) {
	g, err := h.queries.GetGalleryImageByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.GalleryLifecycle, g.Status)) {
		WriteNotFound(w, "Image not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, g)
}

// CreateGalleryImage handles POST /api/gallery for images hosted elsewhere
// or uploaded earlier.
func (h *Handler) CreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateGalleryImage](w, r)
	if !ok {
		return
	}
	h.createGalleryImage(w, r, in)
}

// UploadGalleryImage handles POST /api/gallery/upload. The multipart "file"
// part is normalized into an original and a thumbnail; the remaining form
// fields describe the image.
func (h *Handler) UploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		WriteError(w, http.StatusServiceUnavailable, "Uploads are not configured", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.DefaultMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(imaging.DefaultMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteValidationError(w, map[string]string{"file": "exceeds the 10 MB upload limit"})
			return
		}
		WriteValidationError(w, map[string]string{"file": "must be sent as multipart/form-data"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	in := schema.CreateGalleryImage{
		Title:       r.FormValue("title"),
		Description: formPtr(r, "description"),
		AltText:     formPtr(r, "altText"),
		Status:      strings.ToLower(strings.TrimSpace(r.FormValue("status"))),
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	result, err := h.images.Process(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		WriteValidationError(w, map[string]string{"file": "exceeds the 10 MB upload limit"})
		return
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		WriteValidationError(w, map[string]string{"file": "must be a JPEG, PNG, GIF or WebP image"})
		return
	case err != nil:
		writeServiceError(w, r, err)
		return
	}

	width, height := int64(result.Width), int64(result.Height)
	in.ImageURL = result.ImageURL
	in.ThumbnailURL = &result.ThumbnailURL
	in.Width, in.Height = &width, &height
	in.Normalize()
	if errs := schema.Validate(&in); errs != nil {
		h.discardUpload(result)
		WriteValidationError(w, errs)
		return
	}

	if !h.createGalleryImage(w, r, in) {
		h.discardUpload(result)
	}
}

func (h *Handler) discardUpload(result *imaging.Result) {
	if err := h.images.Remove(result.ImageURL, result.ThumbnailURL); err != nil {
		slog.Warn("failed to remove discarded upload", "error", err, "url", result.ImageURL)
	}
}

// createGalleryImage inserts the row and writes the response. It reports
// whether the row was stored.
func (h *Handler) createGalleryImage(w http.ResponseWriter, r *http.Request, in schema.CreateGalleryImage) bool {
	ctx := r.Context()

	status := in.Status
	if status == "" {
		status = model.GalleryLifecycle.Default
	}

	id, err := h.queries.CreateGalleryImage(ctx, store.GalleryImageParams{
		Title:        in.Title,
		Description:  optional(in.Description),
		ImageURL:     in.ImageURL,
		ThumbnailURL: optional(in.ThumbnailURL),
		AltText:      optional(in.AltText),
		Width:        in.Width,
		Height:       in.Height,
		Status:       status,
		PublishedAt:  model.GalleryLifecycle.PublishedAtOnCreate(status, in.PublishedAt, h.now()),
		UploadedByID: ownerOf(middleware.GetUser(r)),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}

	g, err := h.queries.GetGalleryImageByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return true
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Gallery image added", map[string]any{"image_id": id})
	WriteCreated(w, g)
	return true
}

// UpdateGalleryImage handles PATCH /api/gallery/{id}.
func (h *Handler) UpdateGalleryImage(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateGalleryImage](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetGalleryImageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Image not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.UploadedByID) {
		WriteForbidden(w)
		return
	}

	status, publishedAt := model.GalleryLifecycle.PublishedAtOnUpdate(in.Status, in.PublishedAt, existing.Status, existing.PublishedAt, h.now())

	width, height := existing.Width, existing.Height
	if in.Width != nil {
		width = in.Width
	}
	if in.Height != nil {
		height = in.Height
	}

	err = h.queries.UpdateGalleryImage(ctx, id, store.GalleryImageParams{
		Title:        patch(in.Title, existing.Title),
		Description:  patchOptional(in.Description, existing.Description),
		ImageURL:     patch(in.ImageURL, existing.ImageURL),
		ThumbnailURL: patchOptional(in.ThumbnailURL, existing.ThumbnailURL),
		AltText:      patchOptional(in.AltText, existing.AltText),
		Width:        width,
		Height:       height,
		Status:       status,
		PublishedAt:  publishedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	g, err := h.queries.GetGalleryImageByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Gallery image updated", map[string]any{"image_id": id})
	WriteSuccess(w, g)
}

// DeleteGalleryImage handles DELETE /api/gallery/{id}. Locally stored
// files are removed with the row.
func (h *Handler) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetGalleryImageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Image not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.UploadedByID) {
		WriteForbidden(w)
		return
	}

	if err := h.queries.DeleteGalleryImage(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.images != nil {
		urls := []string{existing.ImageURL}
		if existing.ThumbnailURL != nil {
			urls = append(urls, *existing.ThumbnailURL)
		}
		if err := h.images.Remove(urls...); err != nil {
			slog.Warn("failed to remove gallery files", "error", err, "image_id", id)
		}
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Gallery image deleted", map[string]any{"image_id": id})
	WriteSuccess(w, existing)
}

func formPtr(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
