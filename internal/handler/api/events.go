// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/markup"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
)

func renderEvent(e *model.Event) {
	e.DescriptionHTML = markup.MustRender(e.Description)
}

// checkEventWindow rejects an end time that is not after the start.
func checkEventWindow(startsAt time.Time, endsAt *time.Time) error {
	if endsAt != nil && !endsAt.After(startsAt) {
		return validationError("endsAt", "must be after startsAt")
	}
	return nil
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.EventFilter{
		Page:        q.Page(handler.MaxLimitEvents),
		Status:      q.OneOf("status", model.EventLifecycle.Statuses),
		Statuses:    visibleStatuses(r, model.EventLifecycle),
		Search:      q.String("search"),
		Slug:        q.Lower("slug"),
		IsVirtual:   q.Bool("isVirtual"),
		OrganizerID: q.String("organizerId"),
		From:        q.Since("from"),
		To:          q.Until("to"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListEvents(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i := range items {
		renderEvent(&items[i])
	}
	WriteList(w, items, total, f.Page)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.queries.GetEventByID(r.Context(), chi.URLParam(r, "id"))
	h.writeEvent(w, r, e, err)
}

// GetEventBySlug handles GET /api/events/slug/{slug}.
func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	e, err := h.queries.GetEventBySlug(r.Context(), chi.URLParam(r, "slug"))
	h.writeEvent(w, r, e, err)
}

func (h *Handler) writeEvent(w http.ResponseWriter, r *http.Request, e model.Event, err error) {
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.EventLifecycle, e.Status)) {
		WriteNotFound(w, "Event not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	renderEvent(&e)
	WriteSuccess(w, e)
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateEvent](w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	startsAt := in.StartsAt.UTC()
	if err := checkEventWindow(startsAt, in.EndsAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slug, err := h.resolveSlug(ctx, store.SlugTableEvents, in.Slug, in.Title, "")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := in.Status
	if status == "" {
		status = model.EventLifecycle.Default
	}

	id, err := h.queries.CreateEvent(ctx, store.EventParams{
		Title:           in.Title,
		Slug:            slug,
		Description:     in.Description,
		Location:        optional(in.Location),
		IsVirtual:       in.IsVirtual,
		MeetingURL:      optional(in.MeetingURL),
		RegistrationURL: optional(in.RegistrationURL),
		CoverImageURL:   optional(in.CoverImageURL),
		StartsAt:        startsAt,
		EndsAt:          in.EndsAt,
		Status:          status,
		PublishedAt:     model.EventLifecycle.PublishedAtOnCreate(status, in.PublishedAt, h.now()),
		OrganizerID:     ownerOf(middleware.GetUser(r)),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := h.queries.GetEventByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Event created", map[string]any{"event_id": id, "slug": slug})
	renderEvent(&e)
	WriteCreated(w, e)
}

// UpdateEvent handles PATCH /api/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateEvent](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetEventByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Event not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.OrganizerID) {
		WriteForbidden(w)
		return
	}

	startsAt := patch(in.StartsAt, existing.StartsAt).UTC()
	endsAt := existing.EndsAt
	if in.EndsAt != nil {
		endsAt = in.EndsAt
	}
	if err := checkEventWindow(startsAt, endsAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	title := patch(in.Title, existing.Title)
	slug := existing.Slug
	if in.Slug != nil && *in.Slug != existing.Slug {
		if slug, err = h.resolveSlug(ctx, store.SlugTableEvents, *in.Slug, title, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	status, publishedAt := model.EventLifecycle.PublishedAtOnUpdate(in.Status, in.PublishedAt, existing.Status, existing.PublishedAt, h.now())

	err = h.queries.UpdateEvent(ctx, id, store.EventParams{
		Title:           title,
		Slug:            slug,
		Description:     patch(in.Description, existing.Description),
		Location:        patchOptional(in.Location, existing.Location),
		IsVirtual:       patch(in.IsVirtual, existing.IsVirtual),
		MeetingURL:      patchOptional(in.MeetingURL, existing.MeetingURL),
		RegistrationURL: patchOptional(in.RegistrationURL, existing.RegistrationURL),
		CoverImageURL:   patchOptional(in.CoverImageURL, existing.CoverImageURL),
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Status:          status,
		PublishedAt:     publishedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := h.queries.GetEventByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Event updated", map[string]any{"event_id": id})
	renderEvent(&e)
	WriteSuccess(w, e)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetEventByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Event not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.OrganizerID) {
		WriteForbidden(w)
		return
	}

	if err := h.queries.DeleteEvent(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "Event deleted", map[string]any{"event_id": id, "slug": existing.Slug})
	renderEvent(&existing)
	WriteSuccess(w, existing)
}
