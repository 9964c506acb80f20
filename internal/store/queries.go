package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/util"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries groups every statement the application runs.
type Queries struct {
	db  DBTX
	now func() time.Time
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Page is the limit/offset window of a list query.
type Page struct {
	Limit  int
	Offset int
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ownerCols holds a LEFT JOINed users row.
type ownerCols struct {
	ID        sql.NullString
	Name      sql.NullString
	Email     sql.NullString
	AvatarURL sql.NullString
}

func (o *ownerCols) dest() []any {
	return []any{&o.ID, &o.Name, &o.Email, &o.AvatarURL}
}

func (o ownerCols) ref() *model.UserRef {
	if !o.ID.Valid {
		return nil
	}
	return &model.UserRef{
		ID:        o.ID.String,
		Name:      o.Name.String,
		Email:     o.Email.String,
		AvatarURL: util.StringPtr(o.AvatarURL),
	}
}

// ownerSelect is the owner projection for alias u.
const ownerSelect = "u.id, u.name, u.email, u.avatar_url"

// checkAffected turns a zero-row mutation into sql.ErrNoRows.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// count runs a COUNT(*) for the given FROM/WHERE tail.
func (q *Queries) count(ctx context.Context, from string, w *Where) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+w.SQL(), w.Args()...).Scan(&n)
	return n, err
}

// Ping verifies the database connection.
func (q *Queries) Ping(ctx context.Context) error {
	var one int
	return q.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// SlugTable names tables with a unique slug column.
type SlugTable string

const (
	SlugTableNews        SlugTable = "news"
	SlugTableEvents      SlugTable = "events"
	SlugTableCommunities SlugTable = "communities"
)

// SlugExists reports whether slug is taken in table by a row other than
// excludeID.
func (q *Queries) SlugExists(ctx context.Context, table SlugTable, slug, excludeID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+string(table)+" WHERE slug = ? AND id != ?)",
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}
