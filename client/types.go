package client

import (
	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/schema"
)

// Resources returned by the API.
type (
	User            = model.User
	UserRef         = model.UserRef
	News            = model.News
	Event           = model.Event
	Testimonial     = model.Testimonial
	GalleryImage    = model.GalleryImage
	Community       = model.Community
	CommunityMember = model.CommunityMember
	ContactMessage  = model.ContactMessage
	ActivityEntry   = model.ActivityEntry
)

// Request payloads. Update payloads use pointers; nil fields are left
// unchanged and an empty string clears an optional field.
type (
	Register           = schema.Register
	Login              = schema.Login
	UpdateProfile      = schema.UpdateProfile
	CreateNews         = schema.CreateNews
	UpdateNews         = schema.UpdateNews
	CreateEvent        = schema.CreateEvent
	UpdateEvent        = schema.UpdateEvent
	CreateTestimonial  = schema.CreateTestimonial
	UpdateTestimonial  = schema.UpdateTestimonial
	CreateGalleryImage = schema.CreateGalleryImage
	UpdateGalleryImage = schema.UpdateGalleryImage
	CreateCommunity    = schema.CreateCommunity
	UpdateCommunity    = schema.UpdateCommunity
	AddMember          = schema.AddMember
	CreateUser         = schema.CreateUser
	UpdateUser         = schema.UpdateUser
	Contact            = schema.Contact
)

// Meta is the pagination block of list responses.
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// List is one page of a collection.
type List[T any] struct {
	Items []T
	Meta  Meta
}
