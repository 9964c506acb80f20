package schema

import (
	"strings"
	"time"
)

// CreateNews is the payload of POST /api/news. An empty slug is derived
// from the title.
type CreateNews struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Slug          string     `json:"slug" validate:"omitempty,slug,max=120"`
	Excerpt       *string    `json:"excerpt" validate:"omitempty,max=500"`
	Content       string     `json:"content" validate:"required,max=100000"`
	CoverImageURL *string    `json:"coverImageUrl" validate:"omitempty,mediaurl,max=2048"`
	Status        string     `json:"status" validate:"omitempty,oneof=draft published archived"`
	PublishedAt   *time.Time `json:"publishedAt"`
}

func (n *CreateNews) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Slug = strings.ToLower(strings.TrimSpace(n.Slug))
	trimPtr(n.CoverImageURL)
}

// UpdateNews is the payload of PATCH /api/news/{id}. Absent fields keep
// their stored value.
type UpdateNews struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Slug          *string    `json:"slug" validate:"omitempty,slug,max=120"`
	Excerpt       *string    `json:"excerpt" validate:"omitempty,max=500"`
	Content       *string    `json:"content" validate:"omitempty,min=1,max=100000"`
	CoverImageURL *string    `json:"coverImageUrl" validate:"omitempty,mediaurl,max=2048"`
	Status        *string    `json:"status" validate:"omitempty,oneof=draft published archived"`
	PublishedAt   *time.Time `json:"publishedAt"`
}

func (n *UpdateNews) Normalize() {
	trimPtr(n.Title)
	slugPtr(n.Slug)
	trimPtr(n.CoverImageURL)
}

// CreateEvent is the payload of POST /api/events.
type CreateEvent struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Slug            string     `json:"slug" validate:"omitempty,slug,max=120"`
	Description     string     `json:"description" validate:"required,max=50000"`
	Location        *string    `json:"location" validate:"omitempty,max=300"`
	IsVirtual       bool       `json:"isVirtual"`
	MeetingURL      *string    `json:"meetingUrl" validate:"omitempty,httpurl,max=2048"`
	RegistrationURL *string    `json:"registrationUrl" validate:"omitempty,httpurl,max=2048"`
	CoverImageURL   *string    `json:"coverImageUrl" validate:"omitempty,mediaurl,max=2048"`
	StartsAt        *time.Time `json:"startsAt" validate:"required"`
	EndsAt          *time.Time `json:"endsAt"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	PublishedAt     *time.Time `json:"publishedAt"`
}

func (e *CreateEvent) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Slug = strings.ToLower(strings.TrimSpace(e.Slug))
	trimPtr(e.Location)
	trimPtr(e.MeetingURL)
	trimPtr(e.RegistrationURL)
	trimPtr(e.CoverImageURL)
}

// UpdateEvent is the payload of PATCH /api/events/{id}.
type UpdateEvent struct {
	Title           *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Slug            *string    `json:"slug" validate:"omitempty,slug,max=120"`
	Description     *string    `json:"description" validate:"omitempty,min=1,max=50000"`
	Location        *string    `json:"location" validate:"omitempty,max=300"`
	IsVirtual       *bool      `json:"isVirtual"`
	MeetingURL      *string    `json:"meetingUrl" validate:"omitempty,httpurl,max=2048"`
	RegistrationURL *string    `json:"registrationUrl" validate:"omitempty,httpurl,max=2048"`
	CoverImageURL   *string    `json:"coverImageUrl" validate:"omitempty,mediaurl,max=2048"`
	StartsAt        *time.Time `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	Status          *string    `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	PublishedAt     *time.Time `json:"publishedAt"`
}

func (e *UpdateEvent) Normalize() {
	trimPtr(e.Title)
	slugPtr(e.Slug)
	trimPtr(e.Location)
	trimPtr(e.MeetingURL)
	trimPtr(e.RegistrationURL)
	trimPtr(e.CoverImageURL)
}

// CreateTestimonial is the payload of POST /api/testimonials.
type CreateTestimonial struct {
	AuthorName  string     `json:"authorName" validate:"required,max=100"`
	AuthorTitle *string    `json:"authorTitle" validate:"omitempty,max=100"`
	Company     *string    `json:"company" validate:"omitempty,max=100"`
	Quote       string     `json:"quote" validate:"required,max=2000"`
	AvatarURL   *string    `json:"avatarUrl" validate:"omitempty,mediaurl,max=2048"`
	Rating      *int64     `json:"rating" validate:"omitempty,min=1,max=5"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending published archived"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (t *CreateTestimonial) Normalize() {
	t.AuthorName = strings.TrimSpace(t.AuthorName)
	t.Quote = strings.TrimSpace(t.Quote)
	trimPtr(t.AuthorTitle)
	trimPtr(t.Company)
	trimPtr(t.AvatarURL)
}

// UpdateTestimonial is the payload of PATCH /api/testimonials/{id}.
type UpdateTestimonial struct {
	AuthorName  *string    `json:"authorName" validate:"omitempty,min=1,max=100"`
	AuthorTitle *string    `json:"authorTitle" validate:"omitempty,max=100"`
	Company     *string    `json:"company" validate:"omitempty,max=100"`
	Quote       *string    `json:"quote" validate:"omitempty,min=1,max=2000"`
	AvatarURL   *string    `json:"avatarUrl" validate:"omitempty,mediaurl,max=2048"`
	Rating      *int64     `json:"rating" validate:"omitempty,min=1,max=5"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending published archived"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (t *UpdateTestimonial) Normalize() {
	trimPtr(t.AuthorName)
	trimPtr(t.AuthorTitle)
	trimPtr(t.Company)
	trimPtr(t.Quote)
	trimPtr(t.AvatarURL)
}

// CreateGalleryImage is the payload of POST /api/gallery. ImageURL usually
// comes from a prior upload.
type CreateGalleryImage struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	ImageURL     string     `json:"imageUrl" validate:"required,mediaurl,max=2048"`
	ThumbnailURL *string    `json:"thumbnailUrl" validate:"omitempty,mediaurl,max=2048"`
	AltText      *string    `json:"altText" validate:"omitempty,max=300"`
	Width        *int64     `json:"width" validate:"omitempty,min=1,max=20000"`
	Height       *int64     `json:"height" validate:"omitempty,min=1,max=20000"`
	Status       string     `json:"status" validate:"omitempty,oneof=draft published archived"`
	PublishedAt  *time.Time `json:"publishedAt"`
}

func (g *CreateGalleryImage) Normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.ImageURL = strings.TrimSpace(g.ImageURL)
	trimPtr(g.ThumbnailURL)
	trimPtr(g.AltText)
}

// UpdateGalleryImage is the payload of PATCH /api/gallery/{id}.
type UpdateGalleryImage struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	ImageURL     *string    `json:"imageUrl" validate:"omitempty,min=1,mediaurl,max=2048"`
	ThumbnailURL *string    `json:"thumbnailUrl" validate:"omitempty,mediaurl,max=2048"`
	AltText      *string    `json:"altText" validate:"omitempty,max=300"`
	Width        *int64     `json:"width" validate:"omitempty,min=1,max=20000"`
	Height       *int64     `json:"height" validate:"omitempty,min=1,max=20000"`
	Status       *string    `json:"status" validate:"omitempty,oneof=draft published archived"`
	PublishedAt  *time.Time `json:"publishedAt"`
}

func (g *UpdateGalleryImage) Normalize() {
	trimPtr(g.Title)
	trimPtr(g.ImageURL)
	trimPtr(g.ThumbnailURL)
	trimPtr(g.AltText)
}

// CreateCommunity is the payload of POST /api/communities.
type CreateCommunity struct {
	Name        string     `json:"name" validate:"required,max=120"`
	Slug        string     `json:"slug" validate:"omitempty,slug,max=120"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	LogoURL     *string    `json:"logoUrl" validate:"omitempty,mediaurl,max=2048"`
	WebsiteURL  *string    `json:"websiteUrl" validate:"omitempty,httpurl,max=2048"`
	Status      string     `json:"status" validate:"omitempty,oneof=draft active archived"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (c *CreateCommunity) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	trimPtr(c.LogoURL)
	trimPtr(c.WebsiteURL)
}

// UpdateCommunity is the payload of PATCH /api/communities/{id}.
type UpdateCommunity struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=120"`
	Slug        *string    `json:"slug" validate:"omitempty,slug,max=120"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	LogoURL     *string    `json:"logoUrl" validate:"omitempty,mediaurl,max=2048"`
	WebsiteURL  *string    `json:"websiteUrl" validate:"omitempty,httpurl,max=2048"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft active archived"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (c *UpdateCommunity) Normalize() {
	trimPtr(c.Name)
	slugPtr(c.Slug)
	trimPtr(c.LogoURL)
	trimPtr(c.WebsiteURL)
}

// AddMember is the payload of POST /api/communities/{id}/members.
type AddMember struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,oneof=lead member"`
}

func (m *AddMember) Normalize() {
	m.UserID = strings.TrimSpace(m.UserID)
}
