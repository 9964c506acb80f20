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
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
)

// ListCommunities handles GET /api/communities.
func (h *Handler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.CommunityFilter{
		Page:     q.Page(handler.MaxLimitCommunities),
		Status:   q.OneOf("status", model.CommunityLifecycle.Statuses),
		Statuses: visibleStatuses(r, model.CommunityLifecycle),
		Search:   q.String("search"),
		Slug:     q.Lower("slug"),
		OwnerID:  q.String("ownerId"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListCommunities(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}

// loadCommunity fetches the {id} community, writing a 404 when it is
// missing or hidden from the caller.
func (h *Handler) loadCommunity(w http.ResponseWriter, r *http.Request) (model.Community, bool) {
	c, err := h.queries.GetCommunityByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.CommunityLifecycle, c.Status)) {
		WriteNotFound(w, "Community not found")
		return c, false
	}
	if err != nil {
		writeServiceError(w, r, err)
		return c, false
	}
	return c, true
}

// GetCommunity handles GET /api/communities/{id}.
func (h *Handler) GetCommunity(w http.ResponseWriter, r *http.Request) {
	if c, ok := h.loadCommunity(w, r); ok {
		WriteSuccess(w, c)
	}
}

// GetCommunityBySlug handles GET /api/communities/slug/{slug}.
func (h *Handler) GetCommunityBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.queries.GetCommunityBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !canView(r, model.CommunityLifecycle, c.Status)) {
		WriteNotFound(w, "Community not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c)
}

// CreateCommunity handles POST /api/communities.
func (h *Handler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateCommunity](w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	slug, err := h.resolveSlug(ctx, store.SlugTableCommunities, in.Slug, in.Name, "")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := in.Status
	if status == "" {
		status = model.CommunityLifecycle.Default
	}

	id, err := h.queries.CreateCommunity(ctx, store.CommunityParams{
		Name:        in.Name,
		Slug:        slug,
		Description: optional(in.Description),
		LogoURL:     optional(in.LogoURL),
		WebsiteURL:  optional(in.WebsiteURL),
		Status:      status,
		PublishedAt: model.CommunityLifecycle.PublishedAtOnCreate(status, in.PublishedAt, h.now()),
		OwnerID:     ownerOf(middleware.GetUser(r)),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c, err := h.queries.GetCommunityByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryCommunity, "Community created", map[string]any{"community_id": id, "slug": slug})
	WriteCreated(w, c)
}

// loadManagedCommunity fetches the {id} community and checks the caller
// may manage it.
func (h *Handler) loadManagedCommunity(w http.ResponseWriter, r *http.Request) (model.Community, bool) {
	c, err := h.queries.GetCommunityByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Community not found")
		return c, false
	}
	if err != nil {
		writeServiceError(w, r, err)
		return c, false
	}
	if !auth.CanManageContent(middleware.GetUser(r), c.OwnerID) {
		WriteForbidden(w)
		return c, false
	}
	return c, true
}

// UpdateCommunity handles PATCH /api/communities/{id}.
func (h *Handler) UpdateCommunity(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateCommunity](w, r)
	if !ok {
		return
	}
	existing, ok := h.loadManagedCommunity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := existing.ID

	name := patch(in.Name, existing.Name)
	slug := existing.Slug
	if in.Slug != nil && *in.Slug != existing.Slug {
		var err error
		if slug, err = h.resolveSlug(ctx, store.SlugTableCommunities, *in.Slug, name, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	status, publishedAt := model.CommunityLifecycle.PublishedAtOnUpdate(in.Status, in.PublishedAt, existing.Status, existing.PublishedAt, h.now())

	err := h.queries.UpdateCommunity(ctx, id, store.CommunityParams{
		Name:        name,
		Slug:        slug,
		Description: patchOptional(in.Description, existing.Description),
		LogoURL:     patchOptional(in.LogoURL, existing.LogoURL),
		WebsiteURL:  patchOptional(in.WebsiteURL, existing.WebsiteURL),
		Status:      status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c, err := h.queries.GetCommunityByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryCommunity, "Community updated", map[string]any{"community_id": id})
	WriteSuccess(w, c)
}

// DeleteCommunity handles DELETE /api/communities/{id}. Memberships go
// with it.
func (h *Handler) DeleteCommunity(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadManagedCommunity(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteCommunity(r.Context(), existing.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryCommunity, "Community deleted", map[string]any{
		"community_id": existing.ID,
		"slug":         existing.Slug,
	})
	WriteSuccess(w, existing)
}

// ListMembers handles GET /api/communities/{id}/members.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCommunity(w, r)
	if !ok {
		return
	}

	page := handler.NewQuery(r).Page(handler.MaxLimitMembers)
	items, total, err := h.queries.ListCommunityMembers(r.Context(), c.ID, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, page)
}

// AddMember handles POST /api/communities/{id}/members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.AddMember](w, r)
	if !ok {
		return
	}
	c, ok := h.loadManagedCommunity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if _, err := h.queries.GetUserByID(ctx, in.UserID); errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "User not found")
		return
	} else if err != nil {
		writeServiceError(w, r, err)
		return
	}

	member, err := h.queries.IsCommunityMember(ctx, c.ID, in.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if member {
		WriteError(w, http.StatusConflict, "User is already a member", map[string]string{"userId": "is already a member"})
		return
	}

	role := in.Role
	if role == "" {
		role = model.MemberRoleMember
	}
	if err := h.queries.AddCommunityMember(ctx, c.ID, in.UserID, role); err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := h.queries.GetCommunityMember(ctx, c.ID, in.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryCommunity, "Community member added", map[string]any{
		"community_id": c.ID,
		"member_id":    in.UserID,
		"role":         role,
	})
	WriteCreated(w, m)
}

// RemoveMember handles DELETE /api/communities/{id}/members/{userId}.
// Managers may remove anyone; members may remove themselves.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	memberID := chi.URLParam(r, "userId")

	c, err := h.queries.GetCommunityByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Community not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user.ID != memberID && !auth.CanManageContent(user, c.OwnerID) {
		WriteForbidden(w)
		return
	}

	m, err := h.queries.GetCommunityMember(ctx, c.ID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Member not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.queries.RemoveCommunityMember(ctx, c.ID, memberID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryCommunity, "Community member removed", map[string]any{
		"community_id": c.ID,
		"member_id":    memberID,
	})
	WriteSuccess(w, m)
}
