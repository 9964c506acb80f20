// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
)

// Routes returns the router mounted at /api. It expects the session and
// current-user middleware to run first. health may be nil.
func (h *Handler) Routes(health *handler.HealthHandler) chi.Router {
	r := chi.NewRouter()

	anyUser := middleware.RequireUser()
	staff := middleware.RequireUser(model.RoleAdmin, model.RoleEditor, model.RoleAuthor)
	managers := middleware.RequireUser(model.RoleAdmin, model.RoleEditor)
	admin := middleware.RequireUser(model.RoleAdmin)

	cached := func(next http.Handler) http.Handler { return next }
	if h.responses != nil {
		cached = h.responses.Middleware(cacheBypass)
	}

	if health != nil {
		r.Get("/health", health.Health)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(h.loginLimit).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(anyUser).Get("/me", h.Me)
		r.With(anyUser).Patch("/me", h.UpdateMe)
		r.With(anyUser).Get("/session", h.Session)
	})

	r.Route("/news", func(r chi.Router) {
		r.With(cached).Get("/", h.ListNews)
		r.With(staff).Post("/", h.CreateNews)
		r.With(cached).Get("/slug/{slug}", h.GetNewsBySlug)
		r.With(cached).Get("/{id}", h.GetNews)
		r.With(staff).Patch("/{id}", h.UpdateNews)
		r.With(staff).Delete("/{id}", h.DeleteNews)
	})

	r.Route("/events", func(r chi.Router) {
		r.With(cached).Get("/", h.ListEvents)
		r.With(staff).Post("/", h.CreateEvent)
		r.With(cached).Get("/slug/{slug}", h.GetEventBySlug)
		r.With(cached).Get("/{id}", h.GetEvent)
		r.With(staff).Patch("/{id}", h.UpdateEvent)
		r.With(staff).Delete("/{id}", h.DeleteEvent)
	})

	r.Route("/testimonials", func(r chi.Router) {
		r.With(cached).Get("/", h.ListTestimonials)
		r.With(anyUser).Post("/", h.CreateTestimonial)
		r.With(cached).Get("/{id}", h.GetTestimonial)
		r.With(staff).Patch("/{id}", h.UpdateTestimonial)
		r.With(staff).Delete("/{id}", h.DeleteTestimonial)
	})

	r.Route("/gallery", func(r chi.Router) {
		r.With(cached).Get("/", h.ListGallery)
		r.With(staff).Post("/", h.CreateGalleryImage)
		r.With(staff).Post("/upload", h.UploadGalleryImage)
		r.With(cached).Get("/{id}", h.GetGalleryImage)
		r.With(staff).Patch("/{id}", h.UpdateGalleryImage)
		r.With(staff).Delete("/{id}", h.DeleteGalleryImage)
	})

	r.Route("/communities", func(r chi.Router) {
		r.With(cached).Get("/", h.ListCommunities)
		r.With(staff).Post("/", h.CreateCommunity)
		r.With(cached).Get("/slug/{slug}", h.GetCommunityBySlug)
		r.Route("/{id}", func(r chi.Router) {
			r.With(cached).Get("/", h.GetCommunity)
			r.With(staff).Patch("/", h.UpdateCommunity)
			r.With(staff).Delete("/", h.DeleteCommunity)
			r.With(cached).Get("/members", h.ListMembers)
			r.With(staff).Post("/members", h.AddMember)
			r.With(anyUser).Delete("/members/{userId}", h.RemoveMember)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.With(managers).Get("/", h.ListUsers)
		r.With(admin).Post("/", h.CreateUser)
		r.With(anyUser).Get("/{id}", h.GetUser)
		r.With(anyUser).Patch("/{id}", h.UpdateUser)
		r.With(admin).Delete("/{id}", h.DeleteUser)
	})

	r.Route("/contact", func(r chi.Router) {
		r.With(h.contactLimit).Post("/", h.SubmitContact)
		r.With(managers).Get("/", h.ListContact)
		r.With(managers).Patch("/{id}", h.MarkContact)
	})

	r.With(admin).Get("/activity", h.ListActivity)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

func (h *Handler) loginLimit(next http.Handler) http.Handler {
	if h.loginProtection == nil {
		return next
	}
	return h.loginProtection.Middleware()(next)
}

func (h *Handler) contactLimit(next http.Handler) http.Handler {
	if h.contactLimiter == nil {
		return next
	}
	return h.contactLimiter.Middleware()(next)
}
