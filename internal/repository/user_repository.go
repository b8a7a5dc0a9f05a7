package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/utils"
)

const userColumns = "id, name, email, password_hash, credits, role, avatar, created_at, updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Credits, &u.Role, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if avatar.Valid {
		a := avatar.String
		u.Avatar = &a
	}
	u.UnlimitedCredits = u.IsAdmin()
	return u, nil
}

// Create hashes the password, inserts the user with a starting balance and
// returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, credits int64, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, credits, role) VALUES (?, ?, ?, ?, ?)",
		strings.TrimSpace(name), email, hash, credits, model.RoleUser)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// GetByIDTx reads a user inside tx so the caller sees its own writes.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ProfileUpdate carries the optional fields of a profile edit.  Nil
// pointers leave the column untouched.
type ProfileUpdate struct {
	Name         *string
	Avatar       *string
	PasswordHash *string
}

// UpdateProfile applies the non-nil fields of upd.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd ProfileUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *upd.Avatar)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// SetRole changes a user's role.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, id)
	return err
}

// AddCredits adjusts the balance by delta and never lets it drop below zero.
// A missing user is not reported here; callers re-read the row.
func (r *UserRepo) AddCredits(ctx context.Context, id uint64, delta int64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET credits = GREATEST(credits + ?, 0) WHERE id = ?", delta, id)
	return err
}

// AddCreditsTx increases the balance inside tx.  It returns the number of
// rows touched so the caller can detect a vanished owner.
func (r *UserRepo) AddCreditsTx(ctx context.Context, tx *sql.Tx, id uint64, amount int64) (int64, error) {
	res, err := tx.ExecContext(ctx, "UPDATE users SET credits = credits + ? WHERE id = ?", amount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DebitTx subtracts cost only when the balance covers it.  False means the
// balance was short (or the user is gone) and nothing changed.
func (r *UserRepo) DebitTx(ctx context.Context, tx *sql.Tx, id uint64, cost int64) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE users SET credits = credits - ? WHERE id = ? AND credits >= ?", cost, id, cost)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes the user; dependent rows go with it through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
