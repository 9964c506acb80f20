// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug, null-value and request helpers shared by the
// store and the HTTP handlers.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds generated slugs.
const MaxSlugLength = 120

var (
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify converts a title into a URL slug. Accents are stripped and
// non-Latin scripts are transliterated ("Über München" -> "uber-munchen",
// "Привет мир" -> "privet-mir").
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)

	out = strings.ToLower(unidecode.Unidecode(out))
	out = strings.Join(strings.Fields(out), "-")
	out = nonSlugChars.ReplaceAllString(out, "")
	out = multipleHyphens.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")

	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-")
	}
	return out
}

// NormalizeSlug trims and lowercases a client-provided slug.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsValidSlug reports whether s is lowercase alphanumeric words joined by
// single hyphens.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}
