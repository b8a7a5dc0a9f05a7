package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/imagegen"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userCols = []string{"id", "name", "email", "password_hash", "credits", "role", "avatar", "created_at", "updated_at"}

func userRow(id uint64, name string, credits int64, role string) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userCols).
		AddRow(id, name, name+"@example.com", "hash", credits, role, nil, now, now)
}

var requestCols = []string{
	"id", "user_id", "name", "email", "transaction_ref", "amount_paid", "package_credits",
	"package_price", "package_description", "payment_date", "status", "admin_note", "created_at", "resolved_at",
}

func requestRow(id, userID uint64, credits int64, price float64, status string) *sqlmock.Rows {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(requestCols).
		AddRow(id, userID, "Ann", "ann@example.com", "TX-1", price, credits, price, "pack", now, status, nil, now, nil)
}

const (
	selectUserByID    = `SELECT .* FROM users WHERE id = \?`
	lockRequest       = `SELECT .* FROM credit_requests WHERE id = \? FOR UPDATE`
	resolveRequest    = `UPDATE credit_requests SET status = \?, admin_note = \?, resolved_at = \? WHERE id = \? AND status = 'Pending'`
	grantCredits      = `UPDATE users SET credits = credits \+ \? WHERE id = \?`
	debitCredits      = `UPDATE users SET credits = credits - \? WHERE id = \? AND credits >= \?`
	insertTransaction = `INSERT INTO transactions`
	insertHistory     = `INSERT INTO generation_history`
	lockFavorite      = `SELECT id FROM favorites WHERE user_id = \? AND image_url_hash = \? FOR UPDATE`
)

type fakeGenerator struct {
	img   *imagegen.Image
	err   error
	calls int
	last  imagegen.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req imagegen.Request) (*imagegen.Image, error) {
	f.calls++
	f.last = req
	return f.img, f.err
}

type fakeStore struct {
	url   string
	err   error
	calls int
}

func (f *fakeStore) Upload(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.url, f.err
}
