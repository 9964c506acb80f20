package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/util"
)

const communitySelect = `SELECT c.id, c.name, c.slug, c.description, c.logo_url, c.website_url, c.status,
	c.published_at, c.owner_id, c.created_at, c.updated_at, ` + ownerSelect + `,
	(SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id)
	FROM communities c LEFT JOIN users u ON u.id = c.owner_id`

func scanCommunity(s rowScanner) (model.Community, error) {
	var (
		c                                   model.Community
		description, logo, website, ownerID sql.NullString
		published                           sql.NullTime
		owner                               ownerCols
	)
	dest := append([]any{&c.ID, &c.Name, &c.Slug, &description, &logo, &website, &c.Status,
		&published, &ownerID, &c.CreatedAt, &c.UpdatedAt}, owner.dest()...)
	dest = append(dest, &c.MemberCount)
	if err := s.Scan(dest...); err != nil {
		return c, err
	}
	c.Description = util.StringPtr(description)
	c.LogoURL = util.StringPtr(logo)
	c.WebsiteURL = util.StringPtr(website)
	c.PublishedAt = util.TimePtr(published)
	c.OwnerID = util.StringPtr(ownerID)
	c.Owner = owner.ref()
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return c, nil
}

// CommunityParams holds the writable columns of a community.
type CommunityParams struct {
	Name        string
	Slug        string
	Description *string
	LogoURL     *string
	WebsiteURL  *string
	Status      string
	PublishedAt *time.Time
	OwnerID     *string
}

// CreateCommunity inserts a community and returns its id.
func (q *Queries) CreateCommunity(ctx context.Context, arg CommunityParams) (string, error) {
	id := uuid.NewString()
	now := q.now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO communities (id, name, slug, description, logo_url, website_url, status, published_at,
		 owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Name, arg.Slug, util.NullStringFromPtr(arg.Description), util.NullStringFromPtr(arg.LogoURL),
		util.NullStringFromPtr(arg.WebsiteURL), arg.Status, util.NullTimeFromPtr(arg.PublishedAt),
		util.NullStringFromPtr(arg.OwnerID), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting community: %w", asDuplicate(err))
	}
	return id, nil
}

// UpdateCommunity overwrites the writable columns of a community.
func (q *Queries) UpdateCommunity(ctx context.Context, id string, arg CommunityParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE communities SET name = ?, slug = ?, description = ?, logo_url = ?, website_url = ?, status = ?,
		 published_at = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.Slug, util.NullStringFromPtr(arg.Description), util.NullStringFromPtr(arg.LogoURL),
		util.NullStringFromPtr(arg.WebsiteURL), arg.Status, util.NullTimeFromPtr(arg.PublishedAt), q.now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating community: %w", asDuplicate(err))
	}
	return checkAffected(res)
}

// DeleteCommunity removes a community and, by cascade, its members.
func (q *Queries) DeleteCommunity(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM communities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting community: %w", err)
	}
	return checkAffected(res)
}

// GetCommunityByID returns a community joined with its owner.
func (q *Queries) GetCommunityByID(ctx context.Context, id string) (model.Community, error) {
	return scanCommunity(q.db.QueryRowContext(ctx, communitySelect+" WHERE c.id = ?", id))
}

// GetCommunityBySlug returns a community by slug.
func (q *Queries) GetCommunityBySlug(ctx context.Context, slug string) (model.Community, error) {
	return scanCommunity(q.db.QueryRowContext(ctx, communitySelect+" WHERE c.slug = ?", slug))
}

// CommunityFilter selects communities.
type CommunityFilter struct {
	Page
	Status   string
	Statuses []string
	Search   string
	Slug     string
	OwnerID  string
}

// ListCommunities returns one page of communities ordered by name.
func (q *Queries) ListCommunities(ctx context.Context, f CommunityFilter) ([]model.Community, int64, error) {
	w := &Where{}
	if f.Status != "" {
		w.Eq("c.status", f.Status)
	}
	if f.Statuses != nil {
		w.In("c.status", f.Statuses)
	}
	if f.Slug != "" {
		w.Eq("c.slug", f.Slug)
	}
	if f.OwnerID != "" {
		w.Eq("c.owner_id", f.OwnerID)
	}
	w.Search(f.Search, "c.name", "c.description")

	total, err := q.count(ctx, "communities c", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting communities: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		communitySelect+w.SQL()+" ORDER BY c.name COLLATE NOCASE ASC, c.id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing communities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

const memberSelect = `SELECT m.community_id, m.user_id, m.role, m.joined_at, ` + ownerSelect + `
	FROM community_members m LEFT JOIN users u ON u.id = m.user_id`

func scanMember(s rowScanner) (model.CommunityMember, error) {
	var (
		m     model.CommunityMember
		owner ownerCols
	)
	dest := append([]any{&m.CommunityID, &m.UserID, &m.Role, &m.JoinedAt}, owner.dest()...)
	if err := s.Scan(dest...); err != nil {
		return m, err
	}
	m.User = owner.ref()
	m.JoinedAt = m.JoinedAt.UTC()
	return m, nil
}

// AddCommunityMember inserts a membership. A duplicate pair fails with a
// *DuplicateError.
func (q *Queries) AddCommunityMember(ctx context.Context, communityID, userID, role string) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO community_members (community_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		communityID, userID, role, q.now(),
	)
	if err != nil {
		return fmt.Errorf("adding community member: %w", asDuplicate(err))
	}
	return nil
}

// RemoveCommunityMember deletes a membership.
func (q *Queries) RemoveCommunityMember(ctx context.Context, communityID, userID string) error {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM community_members WHERE community_id = ? AND user_id = ?", communityID, userID)
	if err != nil {
		return fmt.Errorf("removing community member: %w", err)
	}
	return checkAffected(res)
}

// GetCommunityMember returns one membership or sql.ErrNoRows.
func (q *Queries) GetCommunityMember(ctx context.Context, communityID, userID string) (model.CommunityMember, error) {
	return scanMember(q.db.QueryRowContext(ctx,
		memberSelect+" WHERE m.community_id = ? AND m.user_id = ?", communityID, userID))
}

// IsCommunityMember reports whether userID belongs to communityID.
func (q *Queries) IsCommunityMember(ctx context.Context, communityID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM community_members WHERE community_id = ? AND user_id = ?)",
		communityID, userID,
	).Scan(&exists)
	return exists, err
}

// ListCommunityMembers returns one page of members, leads first.
func (q *Queries) ListCommunityMembers(ctx context.Context, communityID string, p Page) ([]model.CommunityMember, int64, error) {
	w := (&Where{}).Eq("m.community_id", communityID)

	total, err := q.count(ctx, "community_members m", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting members: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		memberSelect+w.SQL()+" ORDER BY CASE m.role WHEN 'lead' THEN 0 ELSE 1 END, m.joined_at, m.user_id LIMIT ? OFFSET ?",
		append(w.Args(), p.Limit, p.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.CommunityMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
