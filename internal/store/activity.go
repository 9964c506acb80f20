package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/util"
)

const activityColumns = "id, level, category, message, user_id, ip_address, metadata, created_at"

func scanActivity(s rowScanner) (model.ActivityEntry, error) {
	var (
		a          model.ActivityEntry
		userID, ip sql.NullString
		metadata   string
	)
	if err := s.Scan(&a.ID, &a.Level, &a.Category, &a.Message, &userID, &ip, &metadata, &a.CreatedAt); err != nil {
		return a, err
	}
	a.UserID = util.StringPtr(userID)
	a.IPAddress = util.StringPtr(ip)
	a.CreatedAt = a.CreatedAt.UTC()
	a.Metadata = map[string]any{}
	if metadata != "" {
		_ = json.Unmarshal([]byte(metadata), &a.Metadata)
	}
	return a, nil
}

// CreateActivityParams holds one audit entry.
type CreateActivityParams struct {
	Level     string
	Category  string
	Message   string
	UserID    *string
	IPAddress *string
	Metadata  map[string]any
}

// CreateActivity appends an audit entry.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) error {
	metadata := "{}"
	if len(arg.Metadata) > 0 {
		b, err := json.Marshal(arg.Metadata)
		if err != nil {
			return fmt.Errorf("encoding activity metadata: %w", err)
		}
		metadata = string(b)
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, level, category, message, user_id, ip_address, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), arg.Level, arg.Category, arg.Message,
		util.NullStringFromPtr(arg.UserID), util.NullStringFromPtr(arg.IPAddress), metadata, q.now(),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// ActivityFilter selects audit entries.
type ActivityFilter struct {
	Page
	Level    string
	Category string
	UserID   string
}

// ListActivity returns one page of audit entries, newest first.
func (q *Queries) ListActivity(ctx context.Context, f ActivityFilter) ([]model.ActivityEntry, int64, error) {
	w := &Where{}
	if f.Level != "" {
		w.Eq("level", f.Level)
	}
	if f.Category != "" {
		w.Eq("category", f.Category)
	}
	if f.UserID != "" {
		w.Eq("user_id", f.UserID)
	}

	total, err := q.count(ctx, "activity_log", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting activity: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		"SELECT "+activityColumns+" FROM activity_log"+w.SQL()+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.ActivityEntry{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// DeleteActivityBefore prunes entries older than cutoff.
func (q *Queries) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM activity_log WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning activity: %w", err)
	}
	return res.RowsAffected()
}
