package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// HistoryRepo records successful generations.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// CreateTx inserts h within tx and fills in its ID.
func (r *HistoryRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.GenerationHistoryItem) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO generation_history (user_id, prompt, style, quality, aspect_ratio, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		h.UserID, h.Prompt, h.Style, h.Quality, h.AspectRatio, h.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByUser returns a user's generations, newest first.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID uint64) ([]model.GenerationHistoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT h.id, h.user_id, u.name, h.prompt, h.style, h.quality, h.aspect_ratio, h.created_at FROM generation_history h JOIN users u ON u.id = h.user_id WHERE h.user_id = ? ORDER BY h.created_at DESC, h.id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

// ListAll returns every generation with its author, newest first.
func (r *HistoryRepo) ListAll(ctx context.Context) ([]model.GenerationHistoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT h.id, h.user_id, u.name, h.prompt, h.style, h.quality, h.aspect_ratio, h.created_at FROM generation_history h JOIN users u ON u.id = h.user_id ORDER BY h.created_at DESC, h.id DESC")
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]model.GenerationHistoryItem, error) {
	defer rows.Close()
	out := []model.GenerationHistoryItem{}
	for rows.Next() {
		var h model.GenerationHistoryItem
		if err := rows.Scan(&h.ID, &h.UserID, &h.UserName, &h.Prompt, &h.Style, &h.Quality, &h.AspectRatio, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
