package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DuplicateError reports a write rejected by a UNIQUE or PRIMARY KEY
// constraint. Column is empty when the constraint spans several columns.
type DuplicateError struct {
	Table  string
	Column string
	Err    error
}

func (e *DuplicateError) Error() string { return e.Err.Error() }

func (e *DuplicateError) Unwrap() error { return e.Err }

// asDuplicate returns err as a *DuplicateError when it is a uniqueness
// violation and unchanged otherwise.
func asDuplicate(err error) error {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return err
	}
	if code := serr.Code(); code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code != sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return err
	}

	dup := &DuplicateError{Err: err}
	// "... UNIQUE constraint failed: news.slug (2067)"
	msg := serr.Error()
	if i := strings.LastIndex(msg, "failed: "); i >= 0 {
		cols, _, _ := strings.Cut(msg[i+len("failed: "):], " (")
		first, _, multi := strings.Cut(cols, ", ")
		if table, col, ok := strings.Cut(first, "."); ok {
			dup.Table = table
			if !multi {
				dup.Column = col
			}
		}
	}
	return dup
}
