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
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/store"
)

var errEmailTaken = &service.ConflictError{Field: "email", Message: "Email is already registered"}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.UserFilter{
		Page:   q.Page(handler.MaxLimitUsers),
		Role:   q.OneOf("role", model.Roles),
		Status: q.OneOf("status", model.UserStatuses),
		Search: q.String("search"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListUsers(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}

// CreateUser handles POST /api/users. Without a password the account is
// created as invited.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.CreateUser](w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	taken, err := h.queries.EmailExists(ctx, in.Email, "")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if taken {
		writeServiceError(w, r, errEmailTaken)
		return
	}

	params := store.CreateUserParams{
		Email:     in.Email,
		Name:      in.Name,
		AvatarURL: optional(in.AvatarURL),
		Role:      in.Role,
		Status:    model.UserStatusInvited,
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		params.PasswordHash = hash
		params.Status = model.UserStatusActive
	}

	user, err := h.queries.CreateUser(ctx, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryUser, "User created", map[string]any{
		"target_id": user.ID,
		"email":     user.Email,
		"role":      user.Role,
	})
	WriteCreated(w, user)
}

// GetUser handles GET /api/users/{id}. Admins and editors see anyone;
// other users only themselves.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r)
	id := chi.URLParam(r, "id")
	if caller.ID != id && !auth.HasRole(caller, model.RoleAdmin, model.RoleEditor) {
		WriteForbidden(w)
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "User not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, user)
}

// UpdateUser handles PATCH /api/users/{id}. Admins may change any field;
// users may change their own name and avatar.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateUser](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	caller := middleware.GetUser(r)
	id := chi.URLParam(r, "id")

	self := caller.ID == id
	if !caller.IsAdmin() && (!self || in.AdminOnly()) {
		WriteForbidden(w)
		return
	}

	existing, err := h.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "User not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	params := store.UpdateUserParams{
		ID:        id,
		Email:     patch(in.Email, existing.Email),
		Name:      patch(in.Name, existing.Name),
		AvatarURL: patchOptional(in.AvatarURL, existing.AvatarURL),
		Role:      patch(in.Role, existing.Role),
		Status:    patch(in.Status, existing.Status),
	}

	if self && (params.Role != existing.Role || params.Status != existing.Status) {
		WriteValidationError(w, map[string]string{"role": "you cannot change your own role or status"})
		return
	}

	if params.Email != existing.Email {
		taken, err := h.queries.EmailExists(ctx, params.Email, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if taken {
			writeServiceError(w, r, errEmailTaken)
			return
		}
	}

	if err := h.queries.UpdateUser(ctx, params); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.queries.GetUserByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.contentChanged(r, model.ActivityCategoryUser, "User updated", map[string]any{"target_id": id})
	WriteSuccess(w, user)
}

// DeleteUser handles DELETE /api/users/{id}. Accounts are disabled, never
// removed, and their sessions stop resolving.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if middleware.GetUserID(r) == id {
		WriteError(w, http.StatusBadRequest, "You cannot disable your own account", nil)
		return
	}

	if err := h.queries.SetUserStatus(ctx, id, model.UserStatusDisabled); errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "User not found")
		return
	} else if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.queries.GetUserByID(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.activity.Warn(ctx, model.ActivityCategoryUser, "User disabled", middleware.GetUserID(r), "", map[string]any{
		"target_id": id,
		"email":     user.Email,
	})
	WriteSuccess(w, user)
}
