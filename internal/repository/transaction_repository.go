package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/imagen-studio/internal/model"
)

// TransactionRepo is the append-only purchase log.  Rows are only ever
// inserted, inside the approval transaction.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// CreateTx inserts t within tx and fills in its ID.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	const q = `INSERT INTO transactions (user_id, name, credits_purchased, amount_paid, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.UserID, t.Name, t.CreditsPurchased, t.AmountPaid, t.Status, t.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

const transactionSelect = "SELECT id, user_id, name, credits_purchased, amount_paid, status, created_at FROM transactions"

// ListByUser returns a user's purchases, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	return r.list(ctx, transactionSelect+" WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
}

// ListAll returns every purchase, newest first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx, transactionSelect+" ORDER BY created_at DESC, id DESC")
}

func (r *TransactionRepo) list(ctx context.Context, q string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreditsPurchased, &t.AmountPaid, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
