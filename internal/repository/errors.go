// Package repository holds the raw SQL data access layer.  Lookups that find
// nothing return sql.ErrNoRows; the sentinels below cover the remaining
// cases callers need to tell apart.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when a user registers with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate entry")

// isDuplicate reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// ErrTokenInvalid is returned for refresh tokens that are unknown, revoked
// or expired.
var ErrTokenInvalid = errors.New("refresh token invalid")
