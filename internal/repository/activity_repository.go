package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// ActivityRepo stores the admin audit trail written by the queue consumer.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Create inserts a log entry.
func (r *ActivityRepo) Create(ctx context.Context, a *model.ActivityLog) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO admin_activity (admin_id, admin_email, action, target_user_id, target_name, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.AdminID, a.AdminEmail, a.Action, a.TargetUserID, a.TargetName, a.Details, a.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// List returns the most recent entries, newest first.
func (r *ActivityRepo) List(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, admin_id, admin_email, action, target_user_id, target_name, details, created_at FROM admin_activity ORDER BY created_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ActivityLog{}
	for rows.Next() {
		var (
			a      model.ActivityLog
			target sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.AdminID, &a.AdminEmail, &a.Action, &target, &a.TargetName, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if target.Valid {
			id := uint64(target.Int64)
			a.TargetUserID = &id
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
