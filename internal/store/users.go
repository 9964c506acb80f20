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

const userColumns = "id, email, name, avatar_url, role, status, password_hash, last_login_at, created_at, updated_at"

func scanUser(s rowScanner) (model.User, error) {
	var (
		u         model.User
		avatar    sql.NullString
		hash      sql.NullString
		lastLogin sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &avatar, &u.Role, &u.Status, &hash, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	u.AvatarURL = util.StringPtr(avatar)
	u.PasswordHash = hash.String
	u.LastLoginAt = util.TimePtr(lastLogin)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// CreateUserParams holds the columns of a new user.
type CreateUserParams struct {
	Email        string
	Name         string
	AvatarURL    *string
	Role         string
	Status       string
	PasswordHash string
}

// CreateUser inserts a user and returns it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	id := uuid.NewString()
	now := q.now()
	hash := sql.NullString{String: arg.PasswordHash, Valid: arg.PasswordHash != ""}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, avatar_url, role, status, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Email, arg.Name, util.NullStringFromPtr(arg.AvatarURL), arg.Role, arg.Status, hash, now, now,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("inserting user: %w", asDuplicate(err))
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns a user or sql.ErrNoRows.
func (q *Queries) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByEmail returns a user or sql.ErrNoRows. Email must already be
// normalized.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// EmailExists reports whether email belongs to a user other than excludeID.
func (q *Queries) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)", email, excludeID,
	).Scan(&exists)
	return exists, err
}

// UpdateUserParams holds every mutable profile column.
type UpdateUserParams struct {
	ID        string
	Email     string
	Name      string
	AvatarURL *string
	Role      string
	Status    string
}

// UpdateUser overwrites the profile columns of a user.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, avatar_url = ?, role = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Email, arg.Name, util.NullStringFromPtr(arg.AvatarURL), arg.Role, arg.Status, q.now(), arg.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", asDuplicate(err))
	}
	return checkAffected(res)
}

// UpdateUserPassword replaces the stored password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id, hash string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?", hash, q.now(), id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return checkAffected(res)
}

// UpdateUserLastLogin stamps a successful sign-in.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, "UPDATE users SET last_login_at = ? WHERE id = ?", at.UTC(), id)
	return err
}

// SetUserStatus changes only the account status.
func (q *Queries) SetUserStatus(ctx context.Context, id, status string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ?", status, q.now(), id)
	if err != nil {
		return fmt.Errorf("updating user status: %w", err)
	}
	return checkAffected(res)
}

// CountAdmins returns the number of active admins.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	w := (&Where{}).Eq("role", model.RoleAdmin).Eq("status", model.UserStatusActive)
	return q.count(ctx, "users", w)
}

// UserFilter selects users for the admin listing.
type UserFilter struct {
	Page
	Role   string
	Status string
	Search string
}

// ListUsers returns one page of users and the total match count.
func (q *Queries) ListUsers(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	w := &Where{}
	if f.Role != "" {
		w.Eq("role", f.Role)
	}
	if f.Status != "" {
		w.Eq("status", f.Status)
	}
	w.Search(f.Search, "name", "email")

	total, err := q.count(ctx, "users", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+w.SQL()+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
