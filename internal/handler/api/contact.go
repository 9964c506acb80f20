// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/markup"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/util"
)

// maxUserAgentLen bounds the stored user agent.
const maxUserAgentLen = 512

// SubmitContact handles POST /api/contact. Validation failures answer 422
// rather than 400.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	in, errs := decodeBody[schema.Contact](w, r)
	if errs == nil {
		in.Message = markup.StripTags(in.Message)
		errs = schema.Validate(&in)
	}
	if errs != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Validation failed", errs)
		return
	}

	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}
	ip := util.ClientIP(r)

	msg, err := h.queries.CreateContactMessage(r.Context(), store.CreateContactMessageParams{
		Name:      markup.StripTags(in.Name),
		Email:     in.Email,
		Subject:   optional(markup.StripTagsPtr(in.Subject)),
		Message:   in.Message,
		IPAddress: ip,
		UserAgent: ua,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.activity.Info(r.Context(), model.ActivityCategoryContact, "Contact message received", middleware.GetUserID(r), ip,
		map[string]any{"message_id": msg.ID, "email": msg.Email})
	WriteCreated(w, msg)
}

// ListContact handles GET /api/contact.
func (h *Handler) ListContact(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.ContactFilter{
		Page:   q.Page(handler.MaxLimitContact),
		IsRead: q.Bool("isRead"),
		Search: q.String("search"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.queries.ListContactMessages(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}

// MarkContact handles PATCH /api/contact/{id}.
func (h *Handler) MarkContact(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.MarkContact](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.queries.SetContactMessageRead(ctx, id, *in.IsRead); errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Message not found")
		return
	} else if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg, err := h.queries.GetContactMessage(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, msg)
}
