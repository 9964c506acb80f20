// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client is a typed Go client for the Innovation Lab JSON API.
// A Client keeps the session cookie in its jar, so Login on one Client
// authenticates every later call made through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to one API base URL, for example "https://lab.example.com/api".
type Client struct {
	baseURL    string
	httpClient *http.Client

	Auth         *AuthService
	News         *SluggedService[News, NewsFilter, CreateNews, UpdateNews]
	Events       *SluggedService[Event, EventFilter, CreateEvent, UpdateEvent]
	Testimonials *Service[Testimonial, TestimonialFilter, CreateTestimonial, UpdateTestimonial]
	Gallery      *GalleryService
	Communities  *CommunityService
	Users        *Service[User, UserFilter, CreateUser, UpdateUser]
	Contact      *ContactService
	Activity     *ActivityService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced
// by a fresh cookie jar when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	c.Auth = &AuthService{c: c}
	c.News = &SluggedService[News, NewsFilter, CreateNews, UpdateNews]{newService[News, NewsFilter, CreateNews, UpdateNews](c, "/news")}
	c.Events = &SluggedService[Event, EventFilter, CreateEvent, UpdateEvent]{newService[Event, EventFilter, CreateEvent, UpdateEvent](c, "/events")}
	c.Testimonials = newService[Testimonial, TestimonialFilter, CreateTestimonial, UpdateTestimonial](c, "/testimonials")
	c.Gallery = &GalleryService{newService[GalleryImage, GalleryFilter, CreateGalleryImage, UpdateGalleryImage](c, "/gallery")}
	c.Communities = &CommunityService{&SluggedService[Community, CommunityFilter, CreateCommunity, UpdateCommunity]{
		newService[Community, CommunityFilter, CreateCommunity, UpdateCommunity](c, "/communities"),
	}}
	c.Users = newService[User, UserFilter, CreateUser, UpdateUser](c, "/users")
	c.Contact = &ContactService{c: c}
	c.Activity = &ActivityService{c: c}
	return c, nil
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Errors     map[string]string
	Body       []byte
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of an *Error in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// envelope is the success shape of every response.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta"`
}

// do sends a JSON request and decodes data (and meta, when present) from
// the response envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, data any, meta *Meta) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, data, meta)
}

func (c *Client) send(req *http.Request, data any, meta *Meta) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Body: raw}
		var e struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Message = e.Message
			apiErr.Errors = e.Errors
		}
		return apiErr
	}

	if data == nil && meta == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	if meta != nil && env.Meta != nil {
		*meta = *env.Meta
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
