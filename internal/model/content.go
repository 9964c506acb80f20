// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// News is a news article. Content is markdown; ContentHTML is the
// sanitized rendering and is filled in by the API layer.
type News struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       *string    `json:"excerpt"`
	Content       string     `json:"content"`
	ContentHTML   string     `json:"contentHtml,omitempty"`
	CoverImageURL *string    `json:"coverImageUrl"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"publishedAt"`
	AuthorID      *string    `json:"authorId"`
	Author        *UserRef   `json:"author"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Event is a lab event, physical or virtual.
type Event struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml,omitempty"`
	Location        *string    `json:"location"`
	IsVirtual       bool       `json:"isVirtual"`
	MeetingURL      *string    `json:"meetingUrl"`
	RegistrationURL *string    `json:"registrationUrl"`
	CoverImageURL   *string    `json:"coverImageUrl"`
	StartsAt        time.Time  `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	Status          string     `json:"status"`
	PublishedAt     *time.Time `json:"publishedAt"`
	OrganizerID     *string    `json:"organizerId"`
	Organizer       *UserRef   `json:"organizer"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Testimonial is a quote from a partner or participant.
type Testimonial struct {
	ID            string     `json:"id"`
	AuthorName    string     `json:"authorName"`
	AuthorTitle   *string    `json:"authorTitle"`
	Company       *string    `json:"company"`
	Quote         string     `json:"quote"`
	AvatarURL     *string    `json:"avatarUrl"`
	Rating        *int64     `json:"rating"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"publishedAt"`
	SubmittedByID *string    `json:"submittedById"`
	SubmittedBy   *UserRef   `json:"submittedBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// GalleryImage is a photo in the public gallery.
type GalleryImage struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	ImageURL     string     `json:"imageUrl"`
	ThumbnailURL *string    `json:"thumbnailUrl"`
	AltText      *string    `json:"altText"`
	Width        *int64     `json:"width"`
	Height       *int64     `json:"height"`
	Status       string     `json:"status"`
	PublishedAt  *time.Time `json:"publishedAt"`
	UploadedByID *string    `json:"uploadedById"`
	UploadedBy   *UserRef   `json:"uploadedBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Community is a group hosted by the lab.
type Community struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	LogoURL     *string    `json:"logoUrl"`
	WebsiteURL  *string    `json:"websiteUrl"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	OwnerID     *string    `json:"ownerId"`
	Owner       *UserRef   `json:"owner"`
	MemberCount int64      `json:"memberCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Community member roles.
const (
	MemberRoleLead   = "lead"
	MemberRoleMember = "member"
)

// CommunityMember links a user to a community.
type CommunityMember struct {
	CommunityID string    `json:"communityId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	User        *UserRef  `json:"user"`
	JoinedAt    time.Time `json:"joinedAt"`
}
