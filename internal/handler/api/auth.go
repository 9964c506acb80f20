// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/session"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/util"
)

// SessionResponse describes the caller's session and device.
type SessionResponse struct {
	*session.Info
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"deviceType"`
}

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{UserAgent: r.UserAgent(), IP: util.ClientIP(r)}
}

// startSession issues the session cookie and writes the user.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user model.User) {
	cookie, err := h.auth.StartSession(r.Context(), user.ID, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, cookie.HTTP())
	WriteSuccess(w, user)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.Register](w, r)
	if !ok {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.startSession(w, r, user)
}

// Login handles POST /api/auth/login. Unknown emails and wrong passwords
// get the same 401; repeated failures lock the account for a while.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.Login](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	ip := util.ClientIP(r)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(in.Email); locked {
			WriteError(w, http.StatusTooManyRequests, lockedMessage(remaining), nil)
			return
		}
	}

	user, err := h.auth.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.activity.Warn(ctx, model.ActivityCategoryAuth, "Failed login attempt", "", ip, map[string]any{"email": in.Email})
		if h.loginProtection != nil {
			h.loginProtection.RecordFailedAttempt(in.Email)
		}
		writeServiceError(w, r, err)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(in.Email)
	}
	h.startSession(w, r, user)
}

func lockedMessage(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes <= 1 {
		return "Too many failed login attempts. Try again in a minute."
	}
	return fmt.Sprintf("Too many failed login attempts. Try again in %d minutes.", minutes)
}

// Logout handles POST /api/auth/logout. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := h.auth.EndSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, cookie.HTTP())
	WriteSuccess(w, map[string]bool{"success": true})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, middleware.GetUser(r))
}

// UpdateMe handles PATCH /api/auth/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[schema.UpdateProfile](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	user := middleware.GetUser(r)

	if in.Password != nil {
		if err := h.auth.ChangePassword(ctx, user.ID, *in.CurrentPassword, *in.Password); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	if in.Name != nil || in.AvatarURL != nil {
		err := h.queries.UpdateUser(ctx, store.UpdateUserParams{
			ID:        user.ID,
			Email:     user.Email,
			Name:      patch(in.Name, user.Name),
			AvatarURL: patchOptional(in.AvatarURL, user.AvatarURL),
			Role:      user.Role,
			Status:    user.Status,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	updated, err := h.queries.GetUserByID(ctx, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if in.Name != nil || in.AvatarURL != nil {
		h.contentChanged(r, model.ActivityCategoryUser, "Profile updated", nil)
	}
	WriteSuccess(w, updated)
}

// Session handles GET /api/auth/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	info := h.auth.SessionInfo(r.Context())
	if info == nil {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	ua := useragent.Parse(info.UserAgent)
	resp := SessionResponse{Info: info, Browser: ua.Name, OS: ua.OS}
	if resp.Browser == "" {
		resp.Browser = "Unknown"
	}
	if resp.OS == "" {
		resp.OS = "Unknown"
	}
	switch {
	case ua.Mobile:
		resp.DeviceType = "mobile"
	case ua.Tablet:
		resp.DeviceType = "tablet"
	case ua.Bot:
		resp.DeviceType = "bot"
	default:
		resp.DeviceType = "desktop"
	}
	WriteSuccess(w, resp)
}
