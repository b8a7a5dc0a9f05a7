package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// SupportRepo stores contact-form tickets.
type SupportRepo struct {
	db *sql.DB
}

func NewSupportRepo(db *sql.DB) *SupportRepo { return &SupportRepo{db: db} }

// Create inserts m and fills in its ID.
func (r *SupportRepo) Create(ctx context.Context, m *model.SupportMessage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO support_messages (user_id, name, email, subject, message, issue_type, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		m.UserID, m.Name, m.Email, m.Subject, m.Message, m.IssueType, m.Status, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// List returns every ticket, newest first.
func (r *SupportRepo) List(ctx context.Context) ([]model.SupportMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, email, subject, message, issue_type, status, created_at FROM support_messages ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SupportMessage{}
	for rows.Next() {
		var (
			m   model.SupportMessage
			uid sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &uid, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IssueType, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			id := uint64(uid.Int64)
			m.UserID = &id
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Resolve marks a ticket resolved.  It reports false when no such ticket
// exists.
func (r *SupportRepo) Resolve(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM support_messages WHERE id = ?)", id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	_, err := r.db.ExecContext(ctx, "UPDATE support_messages SET status = ? WHERE id = ?", model.SupportResolved, id)
	return err == nil, err
}
