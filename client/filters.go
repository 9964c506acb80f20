package client

import (
	"net/url"
	"strconv"
	"time"
)

// Filter encodes itself as list query parameters.
type Filter interface {
	Values() url.Values
}

// Page selects a window of a list. Zero values use the server defaults.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Values() url.Values {
	v := url.Values{}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

type values url.Values

func (v values) str(key, s string) {
	if s != "" {
		url.Values(v).Set(key, s)
	}
}

func (v values) boolean(key string, b *bool) {
	if b != nil {
		url.Values(v).Set(key, strconv.FormatBool(*b))
	}
}

func (v values) integer(key string, n *int64) {
	if n != nil {
		url.Values(v).Set(key, strconv.FormatInt(*n, 10))
	}
}

func (v values) timestamp(key string, t *time.Time) {
	if t != nil {
		url.Values(v).Set(key, t.UTC().Format(time.RFC3339))
	}
}

type NewsFilter struct {
	Page
	Status        string
	Search        string
	Slug          string
	AuthorID      string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
}

func (f NewsFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("status", f.Status)
	v.str("search", f.Search)
	v.str("slug", f.Slug)
	v.str("authorId", f.AuthorID)
	v.timestamp("publishedFrom", f.PublishedFrom)
	v.timestamp("publishedTo", f.PublishedTo)
	return q
}

type EventFilter struct {
	Page
	Status      string
	Search      string
	Slug        string
	IsVirtual   *bool
	OrganizerID string
	From        *time.Time
	To          *time.Time
}

func (f EventFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("status", f.Status)
	v.str("search", f.Search)
	v.str("slug", f.Slug)
	v.boolean("isVirtual", f.IsVirtual)
	v.str("organizerId", f.OrganizerID)
	v.timestamp("from", f.From)
	v.timestamp("to", f.To)
	return q
}

type TestimonialFilter struct {
	Page
	Status        string
	Search        string
	SubmittedByID string
	Rating        *int64
}

func (f TestimonialFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("status", f.Status)
	v.str("search", f.Search)
	v.str("submittedById", f.SubmittedByID)
	v.integer("rating", f.Rating)
	return q
}

type GalleryFilter struct {
	Page
	Status       string
	Search       string
	UploadedByID string
	From         *time.Time
	To           *time.Time
}

func (f GalleryFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("status", f.Status)
	v.str("search", f.Search)
	v.str("uploadedById", f.UploadedByID)
	v.timestamp("from", f.From)
	v.timestamp("to", f.To)
	return q
}

type CommunityFilter struct {
	Page
	Status  string
	Search  string
	Slug    string
	OwnerID string
}

func (f CommunityFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("status", f.Status)
	v.str("search", f.Search)
	v.str("slug", f.Slug)
	v.str("ownerId", f.OwnerID)
	return q
}

type UserFilter struct {
	Page
	Role   string
	Status string
	Search string
}

func (f UserFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("role", f.Role)
	v.str("status", f.Status)
	v.str("search", f.Search)
	return q
}

type ContactFilter struct {
	Page
	IsRead *bool
	Search string
}

func (f ContactFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.boolean("isRead", f.IsRead)
	v.str("search", f.Search)
	return q
}

type ActivityFilter struct {
	Page
	Level    string
	Category string
	UserID   string
}

func (f ActivityFilter) Values() url.Values {
	q := f.Page.Values()
	v := values(q)
	v.str("level", f.Level)
	v.str("category", f.Category)
	v.str("userId", f.UserID)
	return q
}
