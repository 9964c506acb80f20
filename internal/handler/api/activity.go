// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/store"
)

var (
	activityLevels = []string{model.ActivityLevelInfo, model.ActivityLevelWarning, model.ActivityLevelError}

	activityCategories = []string{
		model.ActivityCategoryAuth,
		model.ActivityCategoryUser,
		model.ActivityCategoryContent,
		model.ActivityCategoryCommunity,
		model.ActivityCategoryContact,
		model.ActivityCategorySystem,
	}
)

// ListActivity handles GET /api/activity.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := handler.NewQuery(r)
	f := store.ActivityFilter{
		Page:     q.Page(handler.MaxLimitActivity),
		Level:    q.OneOf("level", activityLevels),
		Category: q.OneOf("category", activityCategories),
		UserID:   q.String("userId"),
	}
	if errs := q.Err(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, total, err := h.activity.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteList(w, items, total, f.Page)
}
