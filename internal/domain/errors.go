package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application. The specific errors
// wrap ErrValidation so callers can match the whole family with errors.Is.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidQuality is returned when a review quality rating is outside
	// the accepted 0..5 range. Ratings are rejected, never clamped.
	ErrInvalidQuality = fmt.Errorf("%w: quality rating must be between 0 and 5", ErrValidation)

	// ErrInvalidModality is returned when a practice modality is not one of
	// vocab, listening or speaking.
	ErrInvalidModality = fmt.Errorf("%w: invalid practice modality", ErrValidation)

	// ErrInvalidDateRange is returned when a stats query range is malformed
	// (end before start, or a zero bound).
	ErrInvalidDateRange = fmt.Errorf("%w: invalid date range", ErrValidation)

	// ErrInvalidMetricKind is returned when an achievement definition names
	// a metric outside the closed metric set.
	ErrInvalidMetricKind = fmt.Errorf("%w: invalid achievement metric kind", ErrValidation)
)
