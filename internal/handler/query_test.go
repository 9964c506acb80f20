// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"10", 10},
		{"50", 50},
		{"1000", 50},
		{"0", DefaultLimit},
		{"-5", DefaultLimit},
		{"abc", DefaultLimit},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		if got := ParseLimit(tt.raw, MaxLimitNews); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseLimit_CapBelowDefault(t *testing.T) {
	if got := ParseLimit("", 10); got != 10 {
		t.Errorf("ParseLimit with cap 10 = %d; want 10", got)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"30", 30},
		{"-1", 0},
		{"x", 0},
	}
	for _, tt := range tests {
		if got := ParseOffset(tt.raw); got != tt.want {
			t.Errorf("ParseOffset(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestQuery_Page(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/news?limit=1000&offset=-3", nil)
	p := NewQuery(r).Page(MaxLimitNews)
	if p.Limit != 50 || p.Offset != 0 {
		t.Errorf("Page = %+v; want limit 50 offset 0", p)
	}
}

func TestQuery_TypedValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/events?isVirtual=true&rating=4&from=2026-03-01&to=2026-03-31&status=+Published+", nil)
	q := NewQuery(r)

	if b := q.Bool("isVirtual"); b == nil || !*b {
		t.Errorf("Bool(isVirtual) = %v; want true", b)
	}
	if n := q.Int64("rating"); n == nil || *n != 4 {
		t.Errorf("Int64(rating) = %v; want 4", n)
	}
	from := q.Since("from")
	if from == nil || !from.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Since(from) = %v", from)
	}
	to := q.Until("to")
	if to == nil || !to.Equal(time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC)) {
		t.Errorf("Until(to) = %v", to)
	}
	if s := q.OneOf("status", []string{"draft", "published"}); s != "published" {
		t.Errorf("OneOf(status) = %q; want published", s)
	}
	if q.Bool("missing") != nil || q.Since("missing") != nil {
		t.Error("missing keys must give nil")
	}
	if errs := q.Err(); errs != nil {
		t.Errorf("Err() = %v; want nil", errs)
	}
}

func TestQuery_RFC3339(t *testing.T) {
	r := httptest.NewRequest("GET", "/?from=2026-03-01T10:00:00%2B02:00", nil)
	got := NewQuery(r).Since("from")
	if got == nil || !got.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("Since = %v; want 08:00 UTC", got)
	}
}

func TestQuery_Errors(t *testing.T) {
	r := httptest.NewRequest("GET", "/?isRead=maybe&rating=five&from=yesterday&status=gone", nil)
	q := NewQuery(r)
	q.Bool("isRead")
	q.Int64("rating")
	q.Since("from")
	q.OneOf("status", []string{"draft"})

	errs := q.Err()
	for _, key := range []string{"isRead", "rating", "from", "status"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %q, got %v", key, errs)
		}
	}
}
