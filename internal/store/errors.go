package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g. ErrTermNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation loses a concurrency race:
	// a serialization failure or deadlock after internal retries are
	// exhausted, or a unique violation when two requests race to create
	// the same lazily-initialized row. The whole operation is idempotent
	// and safe for the client to retry.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails to
	// commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user profile does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTermNotFound indicates that the requested vocabulary term does not exist.
	ErrTermNotFound = fmt.Errorf("%w: vocabulary term", ErrNotFound)

	// ErrReviewStateNotFound indicates that the requested review state does not exist.
	ErrReviewStateNotFound = fmt.Errorf("%w: review state", ErrNotFound)

	// ErrStreakNotFound indicates that the user has no streak row yet.
	ErrStreakNotFound = fmt.Errorf("%w: streak", ErrNotFound)

	// ErrAchievementNotFound indicates that the requested achievement definition does not exist.
	ErrAchievementNotFound = fmt.Errorf("%w: achievement", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
