package dao

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes this package cares about, grounded on the pgconn.PgError switch in
// dao/collection.go (there used for "23505" / unique_violation).
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint violation.
func IsUniqueViolation(err error) bool {
	code, ok := pgCode(err)
	return ok && code == pgUniqueViolation
}

// IsWriteConflict reports whether err is a Postgres serialization failure or deadlock, the two
// error classes the write-conflict retry primitive (spec.md §5) must absorb and retry.
func IsWriteConflict(err error) bool {
	code, ok := pgCode(err)
	return ok && (code == pgSerializationFailure || code == pgDeadlockDetected)
}
