package schema

import "strings"

// CreateUser is the payload of POST /api/users. Without a password the user
// is created as invited.
type CreateUser struct {
	Email     string  `json:"email" validate:"required,email,max=254"`
	Name      string  `json:"name" validate:"required,max=100"`
	Role      string  `json:"role" validate:"required,oneof=admin editor author viewer"`
	Password  string  `json:"password" validate:"omitempty,min=8,max=128"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,mediaurl,max=2048"`
}

func (u *CreateUser) Normalize() {
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	trimPtr(u.AvatarURL)
}

// UpdateUser is the payload of PATCH /api/users/{id}. Only admins may set
// email, role and status.
type UpdateUser struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,mediaurl,max=2048"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin editor author viewer"`
	Status    *string `json:"status" validate:"omitempty,oneof=active invited disabled"`
}

func (u *UpdateUser) Normalize() {
	if u.Email != nil {
		*u.Email = normalizeEmail(*u.Email)
	}
	trimPtr(u.Name)
	trimPtr(u.AvatarURL)
	slugPtr(u.Role)
	slugPtr(u.Status)
}

// AdminOnly reports whether the payload touches fields only an admin may
// change.
func (u *UpdateUser) AdminOnly() bool {
	return u.Email != nil || u.Role != nil || u.Status != nil
}
