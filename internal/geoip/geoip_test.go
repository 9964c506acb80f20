package geoip

import (
	"path/filepath"
	"testing"
)

func TestResolver_Disabled(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Enabled() {
		t.Error("resolver without path should be disabled")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"192.168.1.20", Local},
		{"127.0.0.1", Local},
		{"::1", Local},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := r.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}

	if err := r.Reload(); err != nil {
		t.Errorf("Reload without path: %v", err)
	}
}

func TestResolver_MissingFile(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	if r == nil || r.Enabled() {
		t.Error("a failed Open should still return a usable, disabled resolver")
	}
	if got := r.Country("10.0.0.1"); got != Local {
		t.Errorf("Country(private) = %q, want %q", got, Local)
	}
}

func TestResolver_ZeroValue(t *testing.T) {
	var r Resolver
	if got := r.Country("1.1.1.1"); got != "" {
		t.Errorf("zero Resolver Country = %q", got)
	}
}
