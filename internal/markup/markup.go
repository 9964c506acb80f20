// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markup renders markdown bodies and strips markup from plain-text
// fields.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	// ugcPolicy allows the safe subset of HTML produced by markdown.
	ugcPolicy = bluemonday.UGCPolicy()

	strictPolicy = bluemonday.StrictPolicy()
)

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// MustRender is RenderMarkdown for response decoration, where a rendering
// failure degrades to an empty body.
func MustRender(src string) string {
	html, err := RenderMarkdown(src)
	if err != nil {
		return ""
	}
	return html
}

// StripTags removes every tag from s and trims surrounding whitespace.
// Entities produced by the policy are left as-is.
func StripTags(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// StripTagsPtr applies StripTags to an optional field.
func StripTagsPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := StripTags(*s)
	return &v
}
