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

func renderNews(n *model.News) {
	n.ContentHTML = markup.MustRender(n.Content)
}

// ListNews handles GET /api/news.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.NewsFilter{
		Page:          q.Page(handler.MaxLimitNews),
		Status:        q.OneOf("status", model.NewsLifecycle.Statuses),
		Statuses:      visibleStatuses(r, model.NewsLifecycle),
		Search:        q.String("search"),
		Slug:          q.Lower("slug"),
		AuthorID:      q.String("authorId"),
		PublishedFrom: q.Since("publishedFrom"),
		PublishedTo:   q.Until("publishedTo"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListNews(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for i := range items {
		renderNews(&items[i])
	}
	WriteList(w, items, total, f.Page)
}

// GetNews handles GET /api/news/{id}.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	n, err := h.queries.GetNewsByID(r.Context(), chi.URLParam(r, "id"))
	h.writeNews(w, r, n, err)
}

// GetNewsBySlug handles GET /api/news/slug/{slug}.
func (h *Handler) GetNewsBySlug(w http.ResponseWriter, r *http.Request) {
	n, err := h.queries.GetNewsBySlug(r.Context(), chi.URLParam(r, "slug"))
	h.writeNews(w, r, n, err)
}

func (h *Handler) writeNews(w http.ResponseWriter, r *http.Request, n model.News, err error) {
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.NewsLifecycle, n.Status)) {
		WriteNotFound(w, "News not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	renderNews(&n)
	WriteSuccess(w, n)
}

// CreateNews handles POST /api/news.
func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateNews](w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	slug, err := h.resolveSlug(ctx, store.SlugTableNews, in.Slug, in.Title, "")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := in.Status
	if status == "" {
		status = model.NewsLifecycle.Default
	}

	id, err := h.queries.CreateNews(ctx, store.NewsParams{
		Title:         in.Title,
		Slug:          slug,
		Excerpt:       optional(in.Excerpt),
		Content:       in.Content,
		CoverImageURL: optional(in.CoverImageURL),
		Status:        status,
		PublishedAt:   model.NewsLifecycle.PublishedAtOnCreate(status, in.PublishedAt, h.now()),
		AuthorID:      ownerOf(middleware.GetUser(r)),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	n, err := h.queries.GetNewsByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "News created", map[string]any{"news_id": id, "slug": slug})
	renderNews(&n)
	WriteCreated(w, n)
}

// UpdateNews handles PATCH /api/news/{id}.
func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateNews](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetNewsByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "News not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.AuthorID) {
		WriteForbidden(w)
		return
	}

	title := patch(in.Title, existing.Title)
	slug := existing.Slug
	if in.Slug != nil && *in.Slug != existing.Slug {
		if slug, err = h.resolveSlug(ctx, store.SlugTableNews, *in.Slug, title, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	status, publishedAt := model.NewsLifecycle.PublishedAtOnUpdate(in.Status, in.PublishedAt, existing.Status, existing.PublishedAt, h.now())

	err = h.queries.UpdateNews(ctx, id, store.NewsParams{
		Title:         title,
		Slug:          slug,
		Excerpt:       patchOptional(in.Excerpt, existing.Excerpt),
		Content:       patch(in.Content, existing.Content),
		CoverImageURL: patchOptional(in.CoverImageURL, existing.CoverImageURL),
		Status:        status,
		PublishedAt:   publishedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	n, err := h.queries.GetNewsByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "News updated", map[string]any{"news_id": id})
	renderNews(&n)
	WriteSuccess(w, n)
}

// DeleteNews handles DELETE /api/news/{id}.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.queries.GetNewsByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "News not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CanManageContent(middleware.GetUser(r), existing.AuthorID) {
		WriteForbidden(w)
		return
	}

	if err := h.queries.DeleteNews(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryContent, "News deleted", map[string]any{"news_id": id, "slug": existing.Slug})
	renderNews(&existing)
	WriteSuccess(w, existing)
}
