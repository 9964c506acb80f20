// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, the services
// and the JSON API: users, content entities, contact messages and the
// activity log, plus the per-entity status lifecycles.
package model

import (
	"slices"
	"time"
)

// User roles, most privileged first.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleAuthor = "author"
	RoleViewer = "viewer"
)

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInvited  = "invited"
	UserStatusDisabled = "disabled"
)

// Roles lists every valid user role.
var Roles = []string{RoleAdmin, RoleEditor, RoleAuthor, RoleViewer}

// UserStatuses lists every valid user status.
var UserStatuses = []string{UserStatusActive, UserStatusInvited, UserStatusDisabled}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// User is a site account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AvatarURL    *string    `json:"avatarUrl"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff returns true for roles that may author content.
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleEditor || u.Role == RoleAuthor)
}

// IsDisabled returns true if the account may not sign in.
func (u *User) IsDisabled() bool {
	return u != nil && u.Status == UserStatusDisabled
}

// Ref returns the public summary embedded in content responses.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}

// UserRef is the owner projection joined onto content rows.
type UserRef struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}
