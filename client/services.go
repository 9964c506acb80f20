// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Service covers the CRUD routes shared by every collection.
type Service[T any, F Filter, C any, U any] struct {
	c    *Client
	path string
}

func newService[T any, F Filter, C any, U any](c *Client, path string) *Service[T, F, C, U] {
	return &Service[T, F, C, U]{c: c, path: path}
}

// List returns one page matching f.
func (s *Service[T, F, C, U]) List(ctx context.Context, f F) (*List[T], error) {
	out := &List[T]{Items: []T{}}
	if err := s.c.do(ctx, http.MethodGet, s.path, f.Values(), nil, &out.Items, &out.Meta); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service[T, F, C, U]) Get(ctx context.Context, id string) (*T, error) {
	return s.one(ctx, http.MethodGet, s.item(id), nil)
}

func (s *Service[T, F, C, U]) Create(ctx context.Context, in C) (*T, error) {
	return s.one(ctx, http.MethodPost, s.path, in)
}

// Update applies a partial update.
func (s *Service[T, F, C, U]) Update(ctx context.Context, id string, in U) (*T, error) {
	return s.one(ctx, http.MethodPatch, s.item(id), in)
}

// Delete removes a resource and returns it as it was before removal.
// For users the account is disabled instead.
func (s *Service[T, F, C, U]) Delete(ctx context.Context, id string) (*T, error) {
	return s.one(ctx, http.MethodDelete, s.item(id), nil)
}

func (s *Service[T, F, C, U]) one(ctx context.Context, method, path string, body any) (*T, error) {
	var out T
	if err := s.c.do(ctx, method, path, nil, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service[T, F, C, U]) item(id string) string {
	return s.path + "/" + url.PathEscape(id)
}

// SluggedService adds lookup by slug.
type SluggedService[T any, F Filter, C any, U any] struct {
	*Service[T, F, C, U]
}

func (s *SluggedService[T, F, C, U]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return s.one(ctx, http.MethodGet, s.path+"/slug/"+url.PathEscape(slug), nil)
}

// CommunityService adds membership routes.
type CommunityService struct {
	*SluggedService[Community, CommunityFilter, CreateCommunity, UpdateCommunity]
}

func (s *CommunityService) Members(ctx context.Context, communityID string, p Page) (*List[CommunityMember], error) {
	out := &List[CommunityMember]{Items: []CommunityMember{}}
	if err := s.c.do(ctx, http.MethodGet, s.item(communityID)+"/members", p.Values(), nil, &out.Items, &out.Meta); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommunityService) AddMember(ctx context.Context, communityID string, in AddMember) (*CommunityMember, error) {
	var m CommunityMember
	if err := s.c.do(ctx, http.MethodPost, s.item(communityID)+"/members", nil, in, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *CommunityService) RemoveMember(ctx context.Context, communityID, userID string) error {
	path := s.item(communityID) + "/members/" + url.PathEscape(userID)
	return s.c.do(ctx, http.MethodDelete, path, nil, nil, nil, nil)
}

// GalleryService adds multipart image upload.
type GalleryService struct {
	*Service[GalleryImage, GalleryFilter, CreateGalleryImage, UpdateGalleryImage]
}

// UploadOptions are the optional form fields of an upload. Title defaults
// to the file name without extension.
type UploadOptions struct {
	Title       string
	Description string
	AltText     string
	Status      string
}

// Upload sends an image file and creates a gallery entry for it.
func (s *GalleryService) Upload(ctx context.Context, filename string, r io.Reader, opts UploadOptions) (*GalleryImage, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"title":       opts.Title,
		"description": opts.Description,
		"altText":     opts.AltText,
		"status":      opts.Status,
	} {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.c.url(s.path+"/upload", nil), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var img GalleryImage
	if err := s.c.send(req, &img, nil); err != nil {
		return nil, err
	}
	return &img, nil
}

// AuthService covers /auth.
type AuthService struct {
	c *Client
}

// Register creates a viewer account and signs the client in.
func (s *AuthService) Register(ctx context.Context, in Register) (*User, error) {
	return s.user(ctx, http.MethodPost, "/auth/register", in)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*User, error) {
	return s.user(ctx, http.MethodPost, "/auth/login", Login{Email: email, Password: password})
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, nil)
}

func (s *AuthService) Me(ctx context.Context) (*User, error) {
	return s.user(ctx, http.MethodGet, "/auth/me", nil)
}

func (s *AuthService) UpdateMe(ctx context.Context, in UpdateProfile) (*User, error) {
	return s.user(ctx, http.MethodPatch, "/auth/me", in)
}

func (s *AuthService) user(ctx context.Context, method, path string, body any) (*User, error) {
	var u User
	if err := s.c.do(ctx, method, path, nil, body, &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

// ContactService covers the contact form and its inbox.
type ContactService struct {
	c *Client
}

// Submit posts the public contact form.
func (s *ContactService) Submit(ctx context.Context, in Contact) (*ContactMessage, error) {
	var m ContactMessage
	if err := s.c.do(ctx, http.MethodPost, "/contact", nil, in, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ContactService) List(ctx context.Context, f ContactFilter) (*List[ContactMessage], error) {
	out := &List[ContactMessage]{Items: []ContactMessage{}}
	if err := s.c.do(ctx, http.MethodGet, "/contact", f.Values(), nil, &out.Items, &out.Meta); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ContactService) MarkRead(ctx context.Context, id string, read bool) (*ContactMessage, error) {
	var m ContactMessage
	body := map[string]bool{"isRead": read}
	if err := s.c.do(ctx, http.MethodPatch, "/contact/"+url.PathEscape(id), nil, body, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// ActivityService reads the audit trail. Admin only.
type ActivityService struct {
	c *Client
}

func (s *ActivityService) List(ctx context.Context, f ActivityFilter) (*List[ActivityEntry], error) {
	out := &List[ActivityEntry]{Items: []ActivityEntry{}}
	if err := s.c.do(ctx, http.MethodGet, "/activity", f.Values(), nil, &out.Items, &out.Meta); err != nil {
		return nil, err
	}
	return out, nil
}
