// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"time"
)

// Lifecycle describes an entity's status enum and which statuses make a
// row publicly visible.
type Lifecycle struct {
	Default   string
	Statuses  []string
	Published []string
}

// Content statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusActive    = "active"
)

var (
	NewsLifecycle = Lifecycle{
		Default:   StatusDraft,
		Statuses:  []string{StatusDraft, StatusPublished, StatusArchived},
		Published: []string{StatusPublished},
	}
	EventLifecycle = Lifecycle{
		Default:   StatusDraft,
		Statuses:  []string{StatusDraft, StatusPublished, StatusCancelled, StatusCompleted},
		Published: []string{StatusPublished, StatusCompleted},
	}
	TestimonialLifecycle = Lifecycle{
		Default:   StatusPending,
		Statuses:  []string{StatusPending, StatusPublished, StatusArchived},
		Published: []string{StatusPublished},
	}
	GalleryLifecycle = Lifecycle{
		Default:   StatusDraft,
		Statuses:  []string{StatusDraft, StatusPublished, StatusArchived},
		Published: []string{StatusPublished},
	}
	CommunityLifecycle = Lifecycle{
		Default:   StatusDraft,
		Statuses:  []string{StatusDraft, StatusActive, StatusArchived},
		Published: []string{StatusActive},
	}
)

// Valid reports whether status belongs to the lifecycle.
func (l Lifecycle) Valid(status string) bool {
	return slices.Contains(l.Statuses, status)
}

// IsPublished reports whether status is published-like.
func (l Lifecycle) IsPublished(status string) bool {
	return slices.Contains(l.Published, status)
}

// PublishedAtOnCreate resolves publishedAt for a new row: a published-like
// status takes the explicit value or now; any other status yields nil.
func (l Lifecycle) PublishedAtOnCreate(status string, explicit *time.Time, now time.Time) *time.Time {
	if !l.IsPublished(status) {
		return nil
	}
	if explicit != nil {
		t := explicit.UTC()
		return &t
	}
	t := now.UTC()
	return &t
}

// PublishedAtOnUpdate resolves status and publishedAt for a patch. The
// resulting status is the incoming one when given, else the existing one.
// A published-like result keeps, in order: the explicit value, the
// existing timestamp, now. Any other result clears publishedAt.
func (l Lifecycle) PublishedAtOnUpdate(incoming *string, explicit *time.Time, existingStatus string, existing *time.Time, now time.Time) (string, *time.Time) {
	status := existingStatus
	if incoming != nil {
		status = *incoming
	}
	if !l.IsPublished(status) {
		return status, nil
	}
	switch {
	case explicit != nil:
		t := explicit.UTC()
		return status, &t
	case existing != nil:
		t := existing.UTC()
		return status, &t
	default:
		t := now.UTC()
		return status, &t
	}
}
