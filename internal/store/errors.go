package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDataExceptionClass = "22"
	pgCheckViolation     = "23514"
)

// IsDataError reports whether postgres refused the values of a row: a data exception (class 22,
// e.g. a NUL byte in text or a numeric overflow) or a check constraint. Writing the same row again
// fails the same way, unlike connection, lock or serialization failures.
func IsDataError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, pgDataExceptionClass) || pgErr.Code == pgCheckViolation
}
