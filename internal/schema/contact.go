package schema

import "strings"

// Contact is the payload of the public contact form.
type Contact struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email,max=254"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message string  `json:"message" validate:"required,min=10,max=5000"`
}

func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = normalizeEmail(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	trimPtr(c.Subject)
}

// MarkContact is the payload of PATCH /api/contact/{id}.
type MarkContact struct {
	IsRead *bool `json:"isRead" validate:"required"`
}
