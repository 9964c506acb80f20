package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"numbers", "Demo Day 2026", "demo-day-2026"},
		{"accents", "Café résumé", "cafe-resume"},
		{"spaced hyphen", "Hello - World", "hello-world"},
		{"surrounding spaces", "  Hello World  ", "hello-world"},
		{"only symbols", "!@#$%^&*()", ""},
		{"german umlauts", "Über München", "uber-munchen"},
		{"cyrillic", "Привет мир", "privet-mir"},
		{"tabs and newlines", "AI\tLab\nNews", "ai-lab-news"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 60))
	if len(got) > MaxSlugLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug ends with hyphen: %q", got)
	}
	if !IsValidSlug(got) {
		t.Errorf("truncated slug is invalid: %q", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"hello-world", true},
		{"a", true},
		{"v2-launch", true},
		{"", false},
		{"Hello", false},
		{"-lead", false},
		{"trail-", false},
		{"double--hyphen", false},
		{"under_score", false},
		{"with space", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := IsValidSlug(tt.slug); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	if got := NormalizeSlug("  Launch-Week "); got != "launch-week" {
		t.Errorf("NormalizeSlug = %q", got)
	}
}
