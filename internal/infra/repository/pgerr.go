package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgExclusionViolation   = "23P01"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isExclusionConflict reports whether err came from the bookings overlap
// constraint.
func isExclusionConflict(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// isRetryable reports whether the unit lost a serialization race and may be
// run again.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
