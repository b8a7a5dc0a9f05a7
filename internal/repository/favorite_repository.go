package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// FavoriteRepo stores bookmarked images.  Image URLs can be long data URLs,
// so uniqueness is enforced on (user_id, image_url_hash).
type FavoriteRepo struct {
	db *sql.DB
}

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// FindForUpdateTx returns the ID of the user's favorite for urlHash and
// locks it.  sql.ErrNoRows means the image is not a favorite.
func (r *FavoriteRepo) FindForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64, urlHash string) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM favorites WHERE user_id = ? AND image_url_hash = ? FOR UPDATE",
		userID, urlHash).Scan(&id)
	return id, err
}

// DeleteTx removes a favorite by ID.
func (r *FavoriteRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE id = ?", id)
	return err
}

// CreateTx inserts f.  A concurrent insert of the same image surfaces as
// ErrDuplicate.
func (r *FavoriteRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.Favorite, urlHash string) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO favorites (user_id, image_url, image_url_hash, prompt, created_at) VALUES (?, ?, ?, ?, ?)",
		f.UserID, f.ImageURL, urlHash, f.Prompt, f.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// ListByUser returns a user's favorites, newest first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, image_url, prompt, created_at FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ImageURL, &f.Prompt, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
