package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// ReviewRepo stores user reviews.  users.id is unique per review.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts rv.  A second review by the same user returns ErrDuplicate.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, rating, comment, created_at) VALUES (?, ?, ?, ?)",
		rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt)
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
	rv.ID = uint64(id)
	return nil
}

// List returns reviews with the reviewer's name and avatar, newest first.
func (r *ReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT r.id, r.user_id, u.name, u.avatar, r.rating, r.comment, r.created_at FROM reviews r JOIN users u ON u.id = r.user_id ORDER BY r.created_at DESC, r.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var (
			rv     model.Review
			avatar sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.UserName, &avatar, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if avatar.Valid {
			a := avatar.String
			rv.UserAvatar = &a
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
