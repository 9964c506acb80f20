package schema

import "strings"

// Register is the payload of POST /api/auth/register.
type Register struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=100"`
}

func (r *Register) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// Login is the payload of POST /api/auth/login.
type Login struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (l *Login) Normalize() {
	l.Email = normalizeEmail(l.Email)
}

// UpdateProfile is the payload of PATCH /api/auth/me. Changing the password
// requires the current one.
type UpdateProfile struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	AvatarURL       *string `json:"avatarUrl" validate:"omitempty,mediaurl,max=2048"`
	Password        *string `json:"password" validate:"omitempty,min=8,max=128"`
	CurrentPassword *string `json:"currentPassword" validate:"required_with=Password"`
}

func (u *UpdateProfile) Normalize() {
	trimPtr(u.Name)
	trimPtr(u.AvatarURL)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func slugPtr(s *string) {
	if s != nil {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
}
