package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// GalleryRepo stores the curated public gallery.
type GalleryRepo struct {
	db *sql.DB
}

func NewGalleryRepo(db *sql.DB) *GalleryRepo { return &GalleryRepo{db: db} }

// List returns gallery images, newest first.
func (r *GalleryRepo) List(ctx context.Context) ([]model.GalleryImage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, image_url, title, style, added_by, created_at FROM gallery_images ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.GalleryImage{}
	for rows.Next() {
		var (
			g       model.GalleryImage
			addedBy sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.ImageURL, &g.Title, &g.Style, &addedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		if addedBy.Valid {
			id := uint64(addedBy.Int64)
			g.AddedBy = &id
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create inserts g and fills in its ID.
func (r *GalleryRepo) Create(ctx context.Context, g *model.GalleryImage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO gallery_images (image_url, title, style, added_by, created_at) VALUES (?, ?, ?, ?, ?)",
		g.ImageURL, g.Title, g.Style, g.AddedBy, g.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// CreateSeed inserts one of the built-in images under seedKey.  A key that
// is already stored yields ErrDuplicate, so each default lands at most once.
func (r *GalleryRepo) CreateSeed(ctx context.Context, seedKey string, g *model.GalleryImage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO gallery_images (image_url, title, style, seed_key, created_at) VALUES (?, ?, ?, ?, ?)",
		g.ImageURL, g.Title, g.Style, seedKey, g.CreatedAt)
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
	g.ID = uint64(id)
	return nil
}
