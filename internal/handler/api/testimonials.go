// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/markup"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
)

// ListTestimonials handles GET /api/testimonials.
func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.TestimonialFilter{
		Page:          q.Page(handler.MaxLimitTestimonials),
		Status:        q.OneOf("status", model.TestimonialLifecycle.Statuses),
		Statuses:      visibleStatuses(r, model.TestimonialLifecycle),
		Search:        q.String("search"),
		SubmittedByID: q.String("submittedById"),
		Rating:        q.Int64("rating"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListTestimonials(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}

// GetTestimonial handles GET /api/testimonials/{id}.
func (h *Handler) GetTestimonial(w http.ResponseWriter, r *http.Request) {
	t, err := h.queries.GetTestimonialByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.TestimonialLifecycle, t.Status)) {
		WriteNotFound(w, "Testimonial not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, t)
}

// CreateTestimonial handles POST /api/testimonials. Submissions by
// non-staff users always start pending.
func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateTestimonial](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	user := middleware.GetUser(r)

	authorName, quote := markup.StripTags(in.AuthorName), markup.StripTags(in.Quote)
	if errs := requireText(map[string]string{"authorName": authorName, "quote": quote}); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	status := in.Status
	if status == "" || !user.IsStaff() {
		status = model.TestimonialLifecycle.Default
	}
	publishedAt := in.PublishedAt
	if !user.IsStaff() {
		publishedAt = nil
	}

	id, err := h.queries.CreateTestimonial(ctx, store.TestimonialParams{
		AuthorName:    authorName,
		AuthorTitle:   optional(markup.StripTagsPtr(in.AuthorTitle)),
		Company:       optional(markup.StripTagsPtr(in.Company)),
		Quote:         quote,
		AvatarURL:     optional(in.AvatarURL),
		Rating:        in.Rating,
		Status:        status,
		PublishedAt:   model.TestimonialLifecycle.PublishedAtOnCreate(status, publishedAt, h.now()),
		SubmittedByID: ownerOf(user),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	t, err := h.queries.GetTestimonialByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Testimonial submitted", map[string]any{
		"testimonial_id": id,
		"status":         status,
	})
	WriteCreated(w, t)
}

// UpdateTestimonial handles PATCH /api/testimonials/{id}.
func (h *Handler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateTestimonial](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetTestimonialByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Testimonial not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.SubmittedByID) {
		WriteForbidden(w)
		return
	}

	authorName := markup.StripTags(patch(in.AuthorName, existing.AuthorName))
	quote := markup.StripTags(patch(in.Quote, existing.Quote))
	if errs := requireText(map[string]string{"authorName": authorName, "quote": quote}); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	rating := existing.Rating
	if in.Rating != nil {
		rating = in.Rating
	}

	status, publishedAt := model.TestimonialLifecycle.PublishedAtOnUpdate(in.Status, in.PublishedAt, existing.Status, existing.PublishedAt, h.now())

	err = h.queries.UpdateTestimonial(ctx, id, store.TestimonialParams{
		AuthorName:  authorName,
		AuthorTitle: patchOptional(markup.StripTagsPtr(in.AuthorTitle), existing.AuthorTitle),
		Company:     patchOptional(markup.StripTagsPtr(in.Company), existing.Company),
		Quote:       quote,
		AvatarURL:   patchOptional(in.AvatarURL, existing.AvatarURL),
		Rating:      rating,
		Status:      status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	t, err := h.queries.GetTestimonialByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Testimonial updated", map[string]any{"testimonial_id": id})
	WriteSuccess(w, t)
}

// DeleteTestimonial handles DELETE /api/testimonials/{id}.
func (h *Handler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetTestimonialByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Testimonial not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.SubmittedByID) {
		WriteForbidden(w)
		return
	}

	if err := h.queries.DeleteTestimonial(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Testimonial deleted", map[string]any{"testimonial_id": id})
	WriteSuccess(w, existing)
}

// requireText reports fields left empty once markup is stripped.
func requireText(fields map[string]string) map[string]string {
	var errs map[string]string
	for k, v := range fields {
		if v != "" {
			continue
		}
		if errs == nil {
			errs = map[string]string{}
		}
		errs[k] = "is required"
	}
	return errs
}
