package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults shared with the sm2 package.
const (
	// DefaultEaseFactor is the ease assigned to an item on first exposure.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which ease never drops.
	MinEaseFactor = 1.3
)

// Validation errors for ReviewState.
var (
	ErrEmptyStateUserID  = errors.New("review state user ID cannot be empty")
	ErrEmptyStateTermID  = errors.New("review state term ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
)

// ReviewState tracks a user's spaced-repetition scheduling state for one
// vocabulary term. It is created lazily on first exposure, mutated only by
// the scheduler, and never deleted.
type ReviewState struct {
	UserID         uuid.UUID `json:"user_id"`
	TermID         uuid.UUID `json:"term_id"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"` // consecutive successful recalls
	NextReviewAt   time.Time `json:"next_review_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"` // zero until first review
	TotalReviews   int       `json:"total_reviews"`
	CorrectReviews int       `json:"correct_reviews"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewReviewState creates scheduling state for a user and term with default
// values. New items are available for review immediately.
func NewReviewState(userID, termID uuid.UUID, now time.Time) (*ReviewState, error) {
	state := &ReviewState{
		UserID:       userID,
		TermID:       termID,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// Validate checks if the ReviewState has valid data.
func (s *ReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}
	if s.TermID == uuid.Nil {
		return ErrEmptyStateTermID
	}
	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}
	return nil
}

// IsDue reports whether the term should appear in the review queue at the
// given instant.
func (s *ReviewState) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}
