// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/api/")
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "lab.example.com", "ftp://lab.example.com", "http://"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestList_EncodesFilterAndDecodesMeta(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "n1", "title": "First"}},
			"meta": map[string]any{"total": 7, "limit": 1, "offset": 2},
		})
	})

	from := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	list, err := c.News.List(context.Background(), NewsFilter{
		Page:          Page{Limit: 1, Offset: 2},
		Status:        "published",
		Search:        "robots",
		PublishedFrom: &from,
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/news", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "2", q.Get("offset"))
	assert.Equal(t, "published", q.Get("status"))
	assert.Equal(t, "robots", q.Get("search"))
	assert.Equal(t, "2026-01-02T03:04:05Z", q.Get("publishedFrom"))
	assert.False(t, q.Has("slug"))

	require.Len(t, list.Items, 1)
	assert.Equal(t, "First", list.Items[0].Title)
	assert.Equal(t, Meta{Total: 7, Limit: 1, Offset: 2}, list.Meta)
}

func TestFilters_SkipZeroValues(t *testing.T) {
	assert.Empty(t, EventFilter{}.Values())

	virtual := false
	rating := int64(4)
	assert.Equal(t, "false", EventFilter{IsVirtual: &virtual}.Values().Get("isVirtual"))
	assert.Equal(t, "4", TestimonialFilter{Rating: &rating}.Values().Get("rating"))

	read := true
	v := ContactFilter{IsRead: &read, Search: "hi"}.Values()
	assert.Equal(t, "true", v.Get("isRead"))
	assert.Equal(t, "hi", v.Get("search"))
}

func TestCreateUpdateDelete(t *testing.T) {
	var bodies []map[string]any
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		bodies = append(bodies, body)
		status := http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
		}
		writeJSON(w, status, map[string]any{"data": map[string]any{"id": "e1", "title": "Demo", "isVirtual": true}})
	})
	ctx := context.Background()

	starts := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	ev, err := c.Events.Create(ctx, CreateEvent{Title: "Demo", Description: "d", StartsAt: &starts})
	require.NoError(t, err)
	assert.Equal(t, "e1", ev.ID)
	assert.True(t, ev.IsVirtual)

	title := "Renamed"
	_, err = c.Events.Update(ctx, "e1", UpdateEvent{Title: &title})
	require.NoError(t, err)

	_, err = c.Events.Delete(ctx, "e1")
	require.NoError(t, err)

	_, err = c.Events.GetBySlug(ctx, "demo day")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/events",
		"PATCH /api/events/e1",
		"DELETE /api/events/e1",
		"GET /api/events/slug/demo day",
	}, paths)
	assert.Equal(t, "Demo", bodies[0]["title"])
	assert.Equal(t, "2026-03-10T18:00:00Z", bodies[0]["startsAt"])
	assert.Equal(t, "Renamed", bodies[1]["title"])
	assert.Nil(t, bodies[1]["description"])
}

func TestErrorResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  map[string]string{"title": "is required"},
		})
	})

	_, err := c.News.Create(context.Background(), CreateNews{})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Equal(t, "is required", apiErr.Errors["title"])
	assert.Contains(t, string(apiErr.Body), "Validation failed")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "400")
}

func TestErrorResponse_NonJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.Users.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Zero(t, StatusCode(io.EOF))
}

func TestAuth_SessionCookieIsKept(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "innolab_session", Value: "tok", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "email": "a@example.com"}})
		case "/api/auth/me":
			cookie, err := r.Cookie("innolab_session")
			if err != nil || cookie.Value != "tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u1"}})
		case "/api/auth/logout":
			http.SetCookie(w, &http.Cookie{Name: "innolab_session", Value: "", Path: "/", MaxAge: -1})
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"success": true}})
		}
	})
	ctx := context.Background()

	_, err := c.Auth.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	u, err := c.Auth.Login(ctx, "a@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	me, err := c.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)

	require.NoError(t, c.Auth.Logout(ctx))
	_, err = c.Auth.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestGalleryUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/gallery/upload" {
			http.NotFound(w, r)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)

		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
			"id":       "g1",
			"title":    r.FormValue("title") + "|" + hdr.Filename + "|" + string(data),
			"imageUrl": "/uploads/gallery/originals/x.png",
		}})
	})

	img, err := c.Gallery.Upload(context.Background(), "pic.png", strings.NewReader("PNGDATA"), UploadOptions{Title: "Pic"})
	require.NoError(t, err)
	assert.Equal(t, "Pic|pic.png|PNGDATA", img.Title)
}

func TestCommunityMembers(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []map[string]any{{"communityId": "c1", "userId": "u1", "role": "lead"}},
				"meta": map[string]any{"total": 1, "limit": 100, "offset": 0},
			})
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"communityId": "c1", "userId": "u2", "role": "member"}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"communityId": "c1", "userId": "u2"}})
		}
	})
	ctx := context.Background()

	list, err := c.Communities.Members(ctx, "c1", Page{Limit: 100})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "lead", list.Items[0].Role)

	m, err := c.Communities.AddMember(ctx, "c1", AddMember{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "member", m.Role)

	require.NoError(t, c.Communities.RemoveMember(ctx, "c1", "u2"))

	assert.Equal(t, []string{
		"GET /api/communities/c1/members?limit=100",
		"POST /api/communities/c1/members",
		"DELETE /api/communities/c1/members/u2",
	}, paths)
}
