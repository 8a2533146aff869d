// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to
// distinguish between different failure scenarios without depending on
// driver-specific errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or, for owned rows, is
// not visible to the requesting owner.  The two cases are deliberately
// indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken and ErrEmailTaken report unique-key violations on users.
var (
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// duplicateKey returns the violated key name when err is a MySQL
// duplicate-entry error.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return "", false
	}
	// Message format: Duplicate entry 'x' for key 'users.uq_users_email'
	msg := me.Message
	if i := strings.LastIndex(msg, "for key "); i >= 0 {
		return strings.Trim(msg[i+len("for key "):], "'"), true
	}
	return msg, true
}
