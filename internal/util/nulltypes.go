// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"
)

// NullStringFromPtr converts a pointer to string into sql.NullString.
// Empty strings are stored as NULL.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr == nil || *ptr == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *ptr, Valid: true}
}

// StringPtr returns the value of a sql.NullString as a pointer, nil when NULL.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullTimeFromPtr converts a pointer to time into a UTC sql.NullTime.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: ptr.UTC(), Valid: true}
}

// TimePtr returns the value of a sql.NullTime as a UTC pointer, nil when NULL.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// NullInt64FromPtr converts a pointer to int64 into sql.NullInt64.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *ptr, Valid: true}
}

// Int64Ptr returns the value of a sql.NullInt64 as a pointer, nil when NULL.
func Int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
