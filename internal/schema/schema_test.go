package schema

import (
	"strings"
	"testing"
)

func TestBindRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"valid", `{"email":" Ada@Example.COM ","password":"longenough1"}`, nil},
		{"empty body", ``, []string{"email", "password"}},
		{"syntax error", `{"email":`, []string{"email", "password"}},
		{"array body", `[1,2]`, []string{"email", "password"}},
		{"bad email", `{"email":"nope","password":"longenough1"}`, []string{"email"}},
		{"short password", `{"email":"a@b.co","password":"short"}`, []string{"password"}},
		{"wrong type", `{"email":42,"password":"longenough1"}`, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := Bind[Register](strings.NewReader(tt.body))
			if len(tt.wantFields) == 0 {
				if errs != nil {
					t.Fatalf("unexpected errors: %v", errs)
				}
				if got.Email != "ada@example.com" {
					t.Errorf("Email = %q, want normalized", got.Email)
				}
				return
			}
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("missing error for %q in %v", f, errs)
				}
			}
		})
	}
}

func TestBindUpdateNews(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		got, errs := Bind[UpdateNews](strings.NewReader(`{"title":"New title"}`))
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if got.Title == nil || *got.Title != "New title" {
			t.Errorf("Title = %v", got.Title)
		}
		if got.Slug != nil || got.Status != nil || got.PublishedAt != nil {
			t.Error("absent fields should stay nil")
		}
	})

	t.Run("slug is lowercased before validation", func(t *testing.T) {
		got, errs := Bind[UpdateNews](strings.NewReader(`{"slug":"  Hello-World "}`))
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if *got.Slug != "hello-world" {
			t.Errorf("Slug = %q", *got.Slug)
		}
	})

	t.Run("empty slug is accepted", func(t *testing.T) {
		got, errs := Bind[UpdateNews](strings.NewReader(`{"slug":"  "}`))
		if errs != nil {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if got.Slug == nil || *got.Slug != "" {
			t.Errorf("Slug = %v, want pointer to empty string", got.Slug)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		_, errs := Bind[UpdateNews](strings.NewReader(`{"title":"","slug":"a--b","status":"live"}`))
		for _, f := range []string{"title", "slug", "status"} {
			if _, ok := errs[f]; !ok {
				t.Errorf("missing error for %q in %v", f, errs)
			}
		}
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, errs := Bind[UpdateNews](strings.NewReader(`{"publishedAt":"yesterday"}`))
		if errs == nil {
			t.Fatal("expected an error for a non RFC 3339 timestamp")
		}
	})
}

func TestBindCreateEvent(t *testing.T) {
	_, errs := Bind[CreateEvent](strings.NewReader(`{"title":"Demo day","description":"x"}`))
	if errs["startsAt"] != "is required" {
		t.Errorf("startsAt error = %q", errs["startsAt"])
	}

	got, errs := Bind[CreateEvent](strings.NewReader(
		`{"title":"Demo day","description":"x","startsAt":"2026-03-01T10:00:00Z","meetingUrl":"https://meet.example.com/x"}`))
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got.StartsAt == nil || got.StartsAt.Year() != 2026 {
		t.Errorf("StartsAt = %v", got.StartsAt)
	}

	_, errs = Bind[CreateEvent](strings.NewReader(
		`{"title":"Demo day","description":"x","startsAt":"2026-03-01T10:00:00Z","meetingUrl":"ftp://x"}`))
	if _, ok := errs["meetingUrl"]; !ok {
		t.Errorf("expected meetingUrl error, got %v", errs)
	}
}

func TestBindTestimonialRating(t *testing.T) {
	for _, body := range []string{
		`{"authorName":"A","quote":"Great lab","rating":0}`,
		`{"authorName":"A","quote":"Great lab","rating":6}`,
	} {
		_, errs := Bind[CreateTestimonial](strings.NewReader(body))
		if _, ok := errs["rating"]; !ok {
			t.Errorf("%s: expected rating error, got %v", body, errs)
		}
	}

	if _, errs := Bind[CreateTestimonial](strings.NewReader(`{"authorName":"A","quote":"Great lab"}`)); errs != nil {
		t.Errorf("rating is optional, got %v", errs)
	}
}

func TestMediaURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/a.jpg", true},
		{"/uploads/gallery/a.jpg", true},
		{"", true},
		{"//evil.example.com/a.jpg", false},
		{"/uploads/../etc/passwd", false},
		{"javascript:alert(1)", false},
	}

	for _, tt := range tests {
		s := tt.url
		_, errs := Bind[UpdateGalleryImage](strings.NewReader(`{"thumbnailUrl":` + quote(s) + `}`))
		if got := errs == nil; got != tt.want {
			t.Errorf("thumbnailUrl %q valid = %v, want %v (%v)", s, got, tt.want, errs)
		}
	}
}

func TestUpdateProfileNeedsCurrentPassword(t *testing.T) {
	_, errs := Bind[UpdateProfile](strings.NewReader(`{"password":"brand-new-pass"}`))
	if errs["currentPassword"] != "is required" {
		t.Errorf("errors = %v", errs)
	}

	if _, errs := Bind[UpdateProfile](strings.NewReader(`{"password":"brand-new-pass","currentPassword":"old"}`)); errs != nil {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestMarkContact(t *testing.T) {
	if _, errs := Bind[MarkContact](strings.NewReader(`{}`)); errs["isRead"] == "" {
		t.Errorf("expected isRead error, got %v", errs)
	}
	got, errs := Bind[MarkContact](strings.NewReader(`{"isRead":false}`))
	if errs != nil || got.IsRead == nil || *got.IsRead {
		t.Errorf("got %v, %v", got.IsRead, errs)
	}
}

func TestUpdateUserAdminOnly(t *testing.T) {
	u, _ := Bind[UpdateUser](strings.NewReader(`{"name":"Ada"}`))
	if u.AdminOnly() {
		t.Error("name change should not be admin only")
	}
	u, _ = Bind[UpdateUser](strings.NewReader(`{"role":"Admin"}`))
	if !u.AdminOnly() || *u.Role != "admin" {
		t.Errorf("role change: AdminOnly=%v role=%v", u.AdminOnly(), *u.Role)
	}
}

func TestErrorsString(t *testing.T) {
	e := Errors{"b": "is required", "a": "is invalid"}
	if got := e.Error(); got != "a: is invalid; b: is required" {
		t.Errorf("Error() = %q", got)
	}
}

func quote(s string) string {
	return `"` + s + `"`
}
