package store

import (
	"context"
	"fmt"
)

// DeleteExpiredSessions removes scs session rows past their expiry.
// The expiry column holds a julian day, as written by sqlite3store.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// CountSessions returns the number of stored sessions, expired or not.
func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	return q.count(ctx, "sessions", &Where{})
}
