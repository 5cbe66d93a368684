package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	uniqueViolationCode      = "23505" // unique constraint violation
	serializationFailureCode = "40001" // serialization failure
	deadlockDetectedCode     = "40P01" // deadlock victim
)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, such as a duplicate (user_id, term_id) pair.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsRetryableConflict checks if the error is a concurrency loss the caller
// may safely retry: a serialization failure or a deadlock victim.
func IsRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}
