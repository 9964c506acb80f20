// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/innovationlab/innolab/internal/auth"
	"github.com/innovationlab/innolab/internal/cache"
	"github.com/innovationlab/innolab/internal/imaging"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/util"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the collaborators of the API handlers. Responses and Images may
// be nil; without Images the upload route answers 503.
type Deps struct {
	DB              *sql.DB
	Auth            *service.AuthService
	Activity        *service.ActivityService
	LoginProtection *middleware.LoginProtection
	ContactLimiter  *middleware.RateLimiter
	Responses       *cache.Responses
	Images          *imaging.Processor
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	queries         *store.Queries
	auth            *service.AuthService
	activity        *service.ActivityService
	loginProtection *middleware.LoginProtection
	contactLimiter  *middleware.RateLimiter
	responses       *cache.Responses
	images          *imaging.Processor
	now             func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		queries:         store.New(d.DB),
		auth:            d.Auth,
		activity:        d.Activity,
		loginProtection: d.LoginProtection,
		contactLimiter:  d.ContactLimiter,
		responses:       d.Responses,
		images:          d.Images,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Response is the success envelope.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta describes the window of a list response.
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteList writes a 200 list response with pagination meta.
func WriteList(w http.ResponseWriter, data any, total int64, page store.Page) {
	WriteJSON(w, http.StatusOK, Response{
		Data: data,
		Meta: &Meta{Total: total, Limit: page.Limit, Offset: page.Offset},
	})
}

// WriteCreated writes a 201 response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string, fields map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Errors: fields})
}

// WriteValidationError writes a 400 response with field errors.
func WriteValidationError(w http.ResponseWriter, fields map[string]string) {
	WriteError(w, http.StatusBadRequest, "Validation failed", fields)
}

// WriteNotFound writes a 404 response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, nil)
}

// WriteForbidden writes a 403 response.
func WriteForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "Forbidden", nil)
}

// WriteInternalError writes a 500 response.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error", nil)
}

// writeServiceError maps service and store errors to statuses. Anything
// unrecognised is logged and collapsed to 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var cerr *service.ConflictError
	var derr *store.DuplicateError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.As(err, &cerr):
		WriteError(w, http.StatusConflict, cerr.Message, map[string]string{cerr.Field: cerr.Message})
	case errors.As(err, &derr):
		cerr = duplicateConflict(derr)
		WriteError(w, http.StatusConflict, cerr.Message, map[string]string{cerr.Field: cerr.Message})
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "Conflict", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "Account is disabled", nil)
	case errors.Is(err, service.ErrForbidden):
		WriteForbidden(w)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		WriteNotFound(w, "Not found")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path,
			"user_id", middleware.GetUserID(r))
		WriteInternalError(w)
	}
}

// duplicateConflict describes a uniqueness violation that slipped past the
// existence checks of a concurrent request.
func duplicateConflict(d *store.DuplicateError) *service.ConflictError {
	switch {
	case d.Column == "slug":
		return errSlugTaken
	case d.Column == "email":
		return errEmailTaken
	case d.Table == "community_members":
		return &service.ConflictError{Field: "userId", Message: "User is already a member"}
	case d.Column != "":
		return &service.ConflictError{Field: d.Column, Message: "Value is already in use"}
	default:
		return &service.ConflictError{Field: "body", Message: "Record already exists"}
	}
}

// bind decodes, normalizes and validates the JSON body into T. On failure
// it writes a 400 and returns false.
func bind[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	v, errs := decodeBody[T](w, r)
	if errs != nil {
		WriteValidationError(w, errs)
		return v, false
	}
	return v, true
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, schema.Errors) {
	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	return schema.Bind[T](body)
}

func validationError(field, msg string) *service.ValidationError {
	return &service.ValidationError{Fields: map[string]string{field: msg}}
}

// visibleStatuses returns the statuses a list must be restricted to for
// the caller, or nil when every status is visible.
func visibleStatuses(r *http.Request, lc model.Lifecycle) []string {
	if auth.CanSeeUnpublished(middleware.GetUser(r)) {
		return nil
	}
	return lc.Published
}

// canView reports whether the caller may read a row in status.
func canView(r *http.Request, lc model.Lifecycle, status string) bool {
	return auth.CanSeeUnpublished(middleware.GetUser(r)) || lc.IsPublished(status)
}

var errSlugTaken = &service.ConflictError{Field: "slug", Message: "Slug is already in use"}

// resolveSlug returns the provided slug, or one generated from source,
// after checking it is unused by rows other than excludeID.
func (h *Handler) resolveSlug(ctx context.Context, table store.SlugTable, provided, source, excludeID string) (string, error) {
	slug := provided
	if slug == "" {
		slug = util.Slugify(source)
		if slug == "" {
			return "", validationError("slug", "could not be generated; provide one explicitly")
		}
	}
	taken, err := h.queries.SlugExists(ctx, table, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errSlugTaken
	}
	return slug, nil
}

// contentChanged clears cached public responses and records the mutation.
func (h *Handler) contentChanged(r *http.Request, category, message string, metadata map[string]any) {
	if h.responses != nil {
		h.responses.Invalidate(r.Context())
	}
	h.activity.Info(r.Context(), category, message, middleware.GetUserID(r), util.ClientIP(r), metadata)
}

// cacheBypass reports which GET requests skip the response cache.
func cacheBypass(r *http.Request) bool {
	return !middleware.IsAnonymous(r)
}

func ownerOf(user *model.User) *string {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

// patch returns *incoming when set, else existing.
func patch[T any](incoming *T, existing T) T {
	if incoming != nil {
		return *incoming
	}
	return existing
}

// patchOptional returns existing when incoming is absent. An empty string
// clears the column.
func patchOptional(incoming, existing *string) *string {
	if incoming == nil {
		return existing
	}
	if *incoming == "" {
		return nil
	}
	return incoming
}

// optional maps "" to nil.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
