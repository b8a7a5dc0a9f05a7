package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/model"
)

func TestUserCreateMapsDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "ann@example.com", sqlmock.AnyArg(), int64(25), "user").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err = NewUserRepo(db).Create(context.Background(), "Ann", " Ann@Example.com ", "secret", 25, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDebitTxReportsShortBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET credits = credits - \? WHERE id = \? AND credits >= \?`).
		WithArgs(int64(5), uint64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	ok, err := NewUserRepo(db).DebitTx(context.Background(), tx, 7, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateProfileSkipsEmptyUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewUserRepo(db).UpdateProfile(context.Background(), 1, ProfileUpdate{}))

	name := "New"
	mock.ExpectExec(`UPDATE users SET name = \? WHERE id = \?`).
		WithArgs("New", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewUserRepo(db).UpdateProfile(context.Background(), 1, ProfileUpdate{Name: &name}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportResolveMissingTicket(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewSupportRepo(db).Resolve(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateMapsDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	rv := model.Review{UserID: 3, Rating: 5, Comment: "great"}
	err = NewReviewRepo(db).Create(context.Background(), &rv)
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRotateSwapsLiveToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exp := time.Now().UTC().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = \? FOR UPDATE`).
		WithArgs("old").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(int64(3), exp, nil))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs("old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WithArgs(uint64(3), "new", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	uid, err := NewTokenRepo(db).Rotate(context.Background(), "old", "new", exp)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), uid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRotateRejectsRevokedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WithArgs("old").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(3), time.Now().UTC().Add(time.Hour), time.Now().UTC()))
	mock.ExpectRollback()

	_, err = NewTokenRepo(db).Rotate(context.Background(), "old", "new", time.Now().UTC())
	assert.ErrorIs(t, err, ErrTokenInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRotateUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))
	mock.ExpectRollback()

	_, err = NewTokenRepo(db).Rotate(context.Background(), "nope", "new", time.Now().UTC())
	assert.ErrorIs(t, err, ErrTokenInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}
