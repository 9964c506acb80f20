package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/innovationlab/innolab/internal/model"
)

// testDB creates a migrated database in a temp dir.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, q *Queries, email, role string) model.User {
	t.Helper()
	u, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        email,
		Name:         "User " + email,
		Role:         role,
		Status:       model.UserStatusActive,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func strp(s string) *string { return &s }

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := testDB(t)
	var on int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	created := createTestUser(t, q, "ada@example.com", model.RoleEditor)
	if created.ID == "" {
		t.Fatal("user.ID should not be empty")
	}
	if created.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q", created.PasswordHash)
	}

	byEmail, err := q.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("ID = %q, want %q", byEmail.ID, created.ID)
	}

	byID, err := q.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Role != model.RoleEditor || byID.Status != model.UserStatusActive {
		t.Errorf("role/status = %s/%s", byID.Role, byID.Status)
	}
	if byID.CreatedAt.Location() != time.UTC {
		t.Error("CreatedAt should be UTC")
	}

	if _, err := q.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	q := New(db)
	createTestUser(t, q, "dup@example.com", model.RoleViewer)

	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Email: "dup@example.com", Name: "Again", Role: model.RoleViewer, Status: model.UserStatusActive,
	})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateError", err)
	}
	if dup.Table != "users" || dup.Column != "email" {
		t.Errorf("duplicate = %s.%s, want users.email", dup.Table, dup.Column)
	}

	exists, err := q.EmailExists(context.Background(), "dup@example.com", "")
	if err != nil || !exists {
		t.Errorf("EmailExists = %v, %v", exists, err)
	}
}

func TestUpdateNews_DuplicateSlug(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	if _, err := q.CreateNews(ctx, NewsParams{Title: "A", Slug: "taken", Content: "x", Status: model.StatusDraft}); err != nil {
		t.Fatalf("CreateNews: %v", err)
	}
	id, err := q.CreateNews(ctx, NewsParams{Title: "B", Slug: "free", Content: "x", Status: model.StatusDraft})
	if err != nil {
		t.Fatalf("CreateNews: %v", err)
	}

	err = q.UpdateNews(ctx, id, NewsParams{Title: "B", Slug: "taken", Content: "x", Status: model.StatusDraft})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateError", err)
	}
	if dup.Table != "news" || dup.Column != "slug" {
		t.Errorf("duplicate = %s.%s, want news.slug", dup.Table, dup.Column)
	}

	if err := q.DeleteNews(ctx, "missing"); errors.As(err, &dup) {
		t.Error("a missing row is not a duplicate")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := testDB(t)
	err := New(db).UpdateUser(context.Background(), UpdateUserParams{
		ID: "nope", Email: "x@example.com", Name: "x", Role: model.RoleViewer, Status: model.UserStatusActive,
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListUsers_FiltersAndPaging(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	createTestUser(t, q, "a@example.com", model.RoleAdmin)
	createTestUser(t, q, "b@example.com", model.RoleAuthor)
	createTestUser(t, q, "c@example.com", model.RoleAuthor)
	createTestUser(t, q, "d@other.org", model.RoleViewer)

	users, total, err := q.ListUsers(ctx, UserFilter{Page: Page{Limit: 1}, Role: model.RoleAuthor})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 2 || len(users) != 1 {
		t.Errorf("total=%d len=%d, want 2/1", total, len(users))
	}

	_, total, err = q.ListUsers(ctx, UserFilter{Page: Page{Limit: 10}, Search: "OTHER.org"})
	if err != nil {
		t.Fatalf("ListUsers search: %v", err)
	}
	if total != 1 {
		t.Errorf("search total = %d, want 1", total)
	}

	_, total, _ = q.ListUsers(ctx, UserFilter{Page: Page{Limit: 10}, Role: model.RoleAuthor, Search: "b@"})
	if total != 1 {
		t.Errorf("combined filter total = %d, want 1", total)
	}
}

func TestNews_CRUDAndOwnerJoin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	author := createTestUser(t, q, "author@example.com", model.RoleAuthor)

	pub := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	id, err := q.CreateNews(ctx, NewsParams{
		Title: "Launch", Slug: "launch", Content: "# Hi", Status: model.StatusPublished,
		PublishedAt: &pub, AuthorID: &author.ID, Excerpt: strp("short"),
	})
	if err != nil {
		t.Fatalf("CreateNews: %v", err)
	}

	n, err := q.GetNewsByID(ctx, id)
	if err != nil {
		t.Fatalf("GetNewsByID: %v", err)
	}
	if n.Author == nil || n.Author.Email != "author@example.com" {
		t.Errorf("Author = %+v", n.Author)
	}
	if n.PublishedAt == nil || !n.PublishedAt.Equal(pub) {
		t.Errorf("PublishedAt = %v, want %v", n.PublishedAt, pub)
	}
	if n.CoverImageURL != nil {
		t.Errorf("CoverImageURL = %v, want nil", n.CoverImageURL)
	}

	taken, _ := q.SlugExists(ctx, SlugTableNews, "launch", "")
	if !taken {
		t.Error("slug should be taken")
	}
	taken, _ = q.SlugExists(ctx, SlugTableNews, "launch", id)
	if taken {
		t.Error("slug should be free when excluding the row itself")
	}

	if err := q.UpdateNews(ctx, id, NewsParams{Title: "Launch v2", Slug: "launch", Content: "x", Status: model.StatusDraft}); err != nil {
		t.Fatalf("UpdateNews: %v", err)
	}
	n, _ = q.GetNewsBySlug(ctx, "launch")
	if n.Title != "Launch v2" || n.PublishedAt != nil || n.Excerpt != nil {
		t.Errorf("after update: %+v", n)
	}
	if n.AuthorID == nil || *n.AuthorID != author.ID {
		t.Error("update must not touch author_id")
	}

	if err := q.DeleteNews(ctx, id); err != nil {
		t.Fatalf("DeleteNews: %v", err)
	}
	if err := q.DeleteNews(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete: %v, want sql.ErrNoRows", err)
	}
}

func TestListNews_StatusesAndDateRange(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, p := range []NewsParams{
		{Title: "Jan", Slug: "jan", Status: model.StatusPublished, PublishedAt: &jan},
		{Title: "Mar", Slug: "mar", Status: model.StatusPublished, PublishedAt: &mar},
		{Title: "Draft 100%", Slug: "draft", Status: model.StatusDraft},
	} {
		if _, err := q.CreateNews(ctx, p); err != nil {
			t.Fatalf("CreateNews: %v", err)
		}
	}

	items, total, err := q.ListNews(ctx, NewsFilter{Page: Page{Limit: 10}, Statuses: model.NewsLifecycle.Published})
	if err != nil {
		t.Fatalf("ListNews: %v", err)
	}
	if total != 2 || items[0].Slug != "mar" {
		t.Errorf("published list: total=%d first=%q", total, items[0].Slug)
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, total, _ = q.ListNews(ctx, NewsFilter{Page: Page{Limit: 10}, PublishedFrom: &from})
	if total != 1 {
		t.Errorf("publishedFrom total = %d, want 1", total)
	}

	// LIKE wildcards in the term are literal.
	_, total, _ = q.ListNews(ctx, NewsFilter{Page: Page{Limit: 10}, Search: "100%"})
	if total != 1 {
		t.Errorf("search '100%%' total = %d, want 1", total)
	}
	_, total, _ = q.ListNews(ctx, NewsFilter{Page: Page{Limit: 10}, Search: "%"})
	if total != 1 {
		t.Errorf("search '%%' total = %d, want 1", total)
	}
}

func TestCompletePastEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	pastID, _ := q.CreateEvent(ctx, EventParams{Title: "Past", Slug: "past", StartsAt: past, Status: model.StatusPublished, PublishedAt: &past})
	futureID, _ := q.CreateEvent(ctx, EventParams{Title: "Future", Slug: "future", StartsAt: future, Status: model.StatusPublished, PublishedAt: &past})
	draftID, _ := q.CreateEvent(ctx, EventParams{Title: "Old draft", Slug: "old-draft", StartsAt: past, Status: model.StatusDraft})

	n, err := q.CompletePastEvents(ctx, now)
	if err != nil {
		t.Fatalf("CompletePastEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("changed = %d, want 1", n)
	}

	for id, want := range map[string]string{pastID: model.StatusCompleted, futureID: model.StatusPublished, draftID: model.StatusDraft} {
		e, err := q.GetEventByID(ctx, id)
		if err != nil {
			t.Fatalf("GetEventByID: %v", err)
		}
		if e.Status != want {
			t.Errorf("%s status = %q, want %q", e.Slug, e.Status, want)
		}
	}
}

func TestListEvents_IsVirtual(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	_, _ = q.CreateEvent(ctx, EventParams{Title: "Online", Slug: "online", StartsAt: start, IsVirtual: true, Status: model.StatusDraft})
	_, _ = q.CreateEvent(ctx, EventParams{Title: "Onsite", Slug: "onsite", StartsAt: start, Status: model.StatusDraft})

	virtual := true
	items, total, err := q.ListEvents(ctx, EventFilter{Page: Page{Limit: 10}, IsVirtual: &virtual})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if total != 1 || !items[0].IsVirtual {
		t.Errorf("virtual filter: total=%d items=%+v", total, items)
	}
}

func TestCommunityMembers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	owner := createTestUser(t, q, "owner@example.com", model.RoleAuthor)
	member := createTestUser(t, q, "member@example.com", model.RoleViewer)

	id, err := q.CreateCommunity(ctx, CommunityParams{Name: "Makers", Slug: "makers", Status: model.StatusActive, OwnerID: &owner.ID})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	if err := q.AddCommunityMember(ctx, id, member.ID, model.MemberRoleMember); err != nil {
		t.Fatalf("AddCommunityMember: %v", err)
	}
	if err := q.AddCommunityMember(ctx, id, owner.ID, model.MemberRoleLead); err != nil {
		t.Fatalf("AddCommunityMember lead: %v", err)
	}
	var dup *DuplicateError
	err = q.AddCommunityMember(ctx, id, member.ID, model.MemberRoleMember)
	if !errors.As(err, &dup) {
		t.Errorf("duplicate membership err = %v, want *DuplicateError", err)
	} else if dup.Table != "community_members" || dup.Column != "" {
		t.Errorf("duplicate = %q.%q, want community_members with no single column", dup.Table, dup.Column)
	}

	c, _ := q.GetCommunityByID(ctx, id)
	if c.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", c.MemberCount)
	}

	members, total, err := q.ListCommunityMembers(ctx, id, Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListCommunityMembers: %v", err)
	}
	if total != 2 || members[0].Role != model.MemberRoleLead {
		t.Errorf("members = %+v", members)
	}

	if err := q.DeleteCommunity(ctx, id); err != nil {
		t.Fatalf("DeleteCommunity: %v", err)
	}
	ok, _ := q.IsCommunityMember(ctx, id, member.ID)
	if ok {
		t.Error("memberships should cascade on delete")
	}
}

func TestActivity_CreateListPrune(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	err := q.CreateActivity(ctx, CreateActivityParams{
		Level: model.ActivityLevelInfo, Category: model.ActivityCategoryAuth, Message: "login",
		Metadata: map[string]any{"email": "a@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	items, total, err := q.ListActivity(ctx, ActivityFilter{Page: Page{Limit: 10}, Category: model.ActivityCategoryAuth})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if total != 1 || items[0].Metadata["email"] != "a@example.com" {
		t.Errorf("activity = %+v", items)
	}

	n, err := q.DeleteActivityBefore(ctx, time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Errorf("DeleteActivityBefore = %d, %v", n, err)
	}
}

func TestSeedAdmin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := SeedAdmin(ctx, db, "", ""); err == nil {
		t.Error("empty credentials should be rejected")
	}
	if err := SeedAdmin(ctx, db, " Admin@Example.com ", "s3cret-pass"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	if err := SeedAdmin(ctx, db, "admin@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("SeedAdmin (second run): %v", err)
	}

	n, err := New(db).CountAdmins(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountAdmins = %d, %v", n, err)
	}
}

func TestWhere(t *testing.T) {
	w := &Where{}
	if w.SQL() != "" {
		t.Errorf("empty SQL = %q", w.SQL())
	}
	w.Eq("a", 1).In("b", []string{"x", "y"}).Search("Te_st", "c", "d")

	want := " WHERE a = ? AND b IN (?, ?) AND (LOWER(COALESCE(c, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(d, '')) LIKE ? ESCAPE '\\')"
	if w.SQL() != want {
		t.Errorf("SQL =\n%q\nwant\n%q", w.SQL(), want)
	}
	args := w.Args()
	if len(args) != 5 || args[3] != `%te\_st%` {
		t.Errorf("args = %v", args)
	}

	empty := (&Where{}).In("s", nil)
	if empty.SQL() != " WHERE 1 = 0" {
		t.Errorf("empty IN SQL = %q", empty.SQL())
	}
}
