package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/imagen-studio/internal/model"
)

const creditRequestColumns = "id, user_id, name, email, transaction_ref, amount_paid, package_credits, package_price, package_description, payment_date, status, admin_note, created_at, resolved_at"

// CreditRequestRepo stores payment claims awaiting review.  The package is
// flattened into package_* columns.
type CreditRequestRepo struct {
	db *sql.DB
}

func NewCreditRequestRepo(db *sql.DB) *CreditRequestRepo { return &CreditRequestRepo{db: db} }

func scanCreditRequest(s rowScanner) (model.CreditRequest, error) {
	var (
		cr       model.CreditRequest
		note     sql.NullString
		resolved sql.NullTime
	)
	err := s.Scan(&cr.ID, &cr.UserID, &cr.Name, &cr.Email, &cr.TransactionRef, &cr.AmountPaid,
		&cr.Package.Credits, &cr.Package.Price, &cr.Package.Description,
		&cr.PaymentDate, &cr.Status, &note, &cr.CreatedAt, &resolved)
	if err != nil {
		return cr, err
	}
	if note.Valid {
		n := note.String
		cr.AdminNote = &n
	}
	if resolved.Valid {
		t := resolved.Time
		cr.ResolvedAt = &t
	}
	return cr, nil
}

// Create inserts a Pending request and fills in its ID.
func (r *CreditRequestRepo) Create(ctx context.Context, cr *model.CreditRequest) error {
	const q = `INSERT INTO credit_requests (user_id, name, email, transaction_ref, amount_paid, package_credits, package_price, package_description, payment_date, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, cr.UserID, cr.Name, cr.Email, cr.TransactionRef, cr.AmountPaid,
		cr.Package.Credits, cr.Package.Price, cr.Package.Description, cr.PaymentDate, cr.Status, cr.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cr.ID = uint64(id)
	return nil
}

// GetForUpdateTx reads a request and locks its row until tx ends.
func (r *CreditRequestRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.CreditRequest, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+creditRequestColumns+" FROM credit_requests WHERE id = ? FOR UPDATE", id)
	return scanCreditRequest(row)
}

// ResolveTx moves a Pending request to a terminal status.  Zero rows
// affected means the request was no longer Pending.
func (r *CreditRequestRepo) ResolveTx(ctx context.Context, tx *sql.Tx, id uint64, status string, note *string, at time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE credit_requests SET status = ?, admin_note = ?, resolved_at = ? WHERE id = ? AND status = 'Pending'",
		status, note, at, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByUser returns the user's requests, newest first.
func (r *CreditRequestRepo) ListByUser(ctx context.Context, userID uint64) ([]model.CreditRequest, error) {
	return r.list(ctx, "SELECT "+creditRequestColumns+" FROM credit_requests WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
}

// ListAll returns every request, newest first.
func (r *CreditRequestRepo) ListAll(ctx context.Context) ([]model.CreditRequest, error) {
	return r.list(ctx, "SELECT "+creditRequestColumns+" FROM credit_requests ORDER BY created_at DESC, id DESC")
}

func (r *CreditRequestRepo) list(ctx context.Context, q string, args ...any) ([]model.CreditRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CreditRequest{}
	for rows.Next() {
		cr, err := scanCreditRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}
