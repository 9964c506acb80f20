// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"slices"

	"github.com/innovationlab/innolab/internal/model"
)

// CanManageContent reports whether user may update or delete a row owned
// by ownerID. Admins and editors manage everything; authors manage only
// their own rows; everyone else, including anonymous callers, is denied.
func CanManageContent(user *model.User, ownerID *string) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.RoleAdmin, model.RoleEditor:
		return true
	case model.RoleAuthor:
		return ownerID != nil && *ownerID != "" && *ownerID == user.ID
	default:
		return false
	}
}

// HasRole reports whether user holds one of roles. An empty roles list
// admits any signed-in user.
func HasRole(user *model.User, roles ...string) bool {
	if user == nil {
		return false
	}
	return len(roles) == 0 || slices.Contains(roles, user.Role)
}

// CanSeeUnpublished reports whether user may read rows in any status.
func CanSeeUnpublished(user *model.User) bool {
	return user.IsStaff()
}
