// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP statuses without inspecting SQL errors directly.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSlotUnavailable is returned when a booking targets a slot that does
// not exist or has already been consumed. Handlers should translate this
// into an HTTP 409 response.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrDuplicateBooking is returned when the CPF behind a booking request
// already holds an active booking. Handlers should translate this into
// an HTTP 409 response.
var ErrDuplicateBooking = errors.New("duplicate booking")

// ErrSlotsExist is returned when slot generation is attempted for a date
// that already has slots. The chosen policy is to reject rather than
// silently duplicate or merge.
var ErrSlotsExist = errors.New("slots already exist for date")

// ErrNotFound is returned when a booking referenced by ID does not exist.
var ErrNotFound = errors.New("not found")

// MySQL server error numbers the repositories classify on.
const (
	mysqlNumDuplicateKey = 1062
	mysqlNumDeadlock     = 1213
)

func isMySQLErr(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// isDuplicateKey reports whether err is a unique-constraint violation.
func isDuplicateKey(err error) bool { return isMySQLErr(err, mysqlNumDuplicateKey) }

// IsDeadlock reports whether err is a MySQL deadlock rollback. InnoDB
// picks a victim when two transactions lock the same rows in opposite
// order; the victim's transaction is gone and the statement sequence can
// be retried from the top.
func IsDeadlock(err error) bool { return isMySQLErr(err, mysqlNumDeadlock) }
