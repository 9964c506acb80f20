package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/innovationlab/innolab/internal/model"
	"github.com/innovationlab/innolab/internal/util"
)

const contactColumns = "id, name, email, subject, message, ip_address, user_agent, is_read, created_at"

func scanContactMessage(s rowScanner) (model.ContactMessage, error) {
	var (
		m       model.ContactMessage
		subject sql.NullString
	)
	err := s.Scan(&m.ID, &m.Name, &m.Email, &subject, &m.Message, &m.IPAddress, &m.UserAgent, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.Subject = util.StringPtr(subject)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

// CreateContactMessageParams holds a contact-form submission.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Subject   *string
	Message   string
	IPAddress string
	UserAgent string
}

// CreateContactMessage stores a submission and returns it.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (model.ContactMessage, error) {
	id := uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, ip_address, user_agent, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		id, arg.Name, arg.Email, util.NullStringFromPtr(arg.Subject), arg.Message,
		arg.IPAddress, arg.UserAgent, q.now(),
	)
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("inserting contact message: %w", err)
	}
	return q.GetContactMessage(ctx, id)
}

// GetContactMessage returns one submission.
func (q *Queries) GetContactMessage(ctx context.Context, id string) (model.ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contact_messages WHERE id = ?", id))
}

// SetContactMessageRead marks a submission read or unread.
func (q *Queries) SetContactMessageRead(ctx context.Context, id string, read bool) error {
	res, err := q.db.ExecContext(ctx, "UPDATE contact_messages SET is_read = ? WHERE id = ?", read, id)
	if err != nil {
		return fmt.Errorf("updating contact message: %w", err)
	}
	return checkAffected(res)
}

// ContactFilter selects submissions for the inbox.
type ContactFilter struct {
	Page
	IsRead *bool
	Search string
}

// ListContactMessages returns one page of submissions, newest first.
func (q *Queries) ListContactMessages(ctx context.Context, f ContactFilter) ([]model.ContactMessage, int64, error) {
	w := &Where{}
	if f.IsRead != nil {
		w.Eq("is_read", *f.IsRead)
	}
	w.Search(f.Search, "name", "email", "subject", "message")

	total, err := q.count(ctx, "contact_messages", w)
	if err != nil {
		return nil, 0, fmt.Errorf("counting contact messages: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contact_messages"+w.SQL()+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(w.Args(), f.Limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing contact messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.ContactMessage{}
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
