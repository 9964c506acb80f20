// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler holds request helpers shared by the API handlers and the
// health endpoints.
package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/innovationlab/innolab/internal/schema"
	"github.com/innovationlab/innolab/internal/store"
)

// DefaultLimit is the page size when the client does not ask for one.
const DefaultLimit = 20

// Per-entity page size caps.
const (
	MaxLimitNews         = 50
	MaxLimitEvents       = 100
	MaxLimitTestimonials = 50
	MaxLimitGallery      = 100
	MaxLimitCommunities  = 50
	MaxLimitMembers      = 100
	MaxLimitUsers        = 100
	MaxLimitContact      = 100
	MaxLimitActivity     = 200
)

// dateOnly is accepted alongside RFC 3339 in time filters.
const dateOnly = "2006-01-02"

// ParseLimit resolves a limit parameter. Missing, non-numeric and
// non-positive values give DefaultLimit; values above maxLimit are capped.
func ParseLimit(raw string, maxLimit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		n = DefaultLimit
	}
	return min(n, maxLimit)
}

// ParseOffset resolves an offset parameter. Anything but a non-negative
// integer gives 0.
func ParseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Query reads list filters from a URL query. Malformed typed values are
// collected as field errors instead of being silently dropped.
type Query struct {
	values url.Values
	errs   schema.Errors
}

// NewQuery wraps the query string of r.
func NewQuery(r *http.Request) *Query {
	return &Query{values: r.URL.Query()}
}

// Page returns the limit/offset window capped at maxLimit.
func (q *Query) Page(maxLimit int) store.Page {
	return store.Page{
		Limit:  ParseLimit(q.values.Get("limit"), maxLimit),
		Offset: ParseOffset(q.values.Get("offset")),
	}
}

// String returns the trimmed value of key.
func (q *Query) String(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// Lower returns the trimmed, lowercased value of key.
func (q *Query) Lower(key string) string {
	return strings.ToLower(q.String(key))
}

// Bool parses key as a boolean. Absent keys give nil.
func (q *Query) Bool(key string) *bool {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(key, "must be true or false")
		return nil
	}
	return &b
}

// Int64 parses key as an integer. Absent keys give nil.
func (q *Query) Int64(key string) *int64 {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(key, "must be an integer")
		return nil
	}
	return &n
}

// Since parses key as the lower bound of a time range. A bare date means
// the start of that day in UTC.
func (q *Query) Since(key string) *time.Time {
	return q.parseTime(key, false)
}

// Until parses key as the upper bound of a time range. A bare date means
// the end of that day in UTC.
func (q *Query) Until(key string) *time.Time {
	return q.parseTime(key, true)
}

func (q *Query) parseTime(key string, endOfDay bool) *time.Time {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		q.fail(key, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

// OneOf returns the lowercased value of key when it is one of allowed.
func (q *Query) OneOf(key string, allowed []string) string {
	v := q.Lower(key)
	if v == "" {
		return ""
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	q.fail(key, "must be one of: "+strings.Join(allowed, ", "))
	return ""
}

// Err returns the collected field errors, or nil.
func (q *Query) Err() schema.Errors {
	if len(q.errs) == 0 {
		return nil
	}
	return q.errs
}

func (q *Query) fail(key, msg string) {
	if q.errs == nil {
		q.errs = schema.Errors{}
	}
	q.errs[key] = msg
}
