// Package review implements vocabulary review submission and review queue
// construction on top of the SM-2 scheduler.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// Common review service errors.
var (
	// ErrInvalidLimit indicates a non-positive queue limit.
	ErrInvalidLimit = fmt.Errorf("%w: queue limit must be positive", domain.ErrValidation)

	// ErrTermNotFound indicates the reviewed term does not exist in the catalog.
	ErrTermNotFound = errors.New("vocabulary term not found")
)

// Submission is one vocabulary review answer. EventID is supplied by the
// caller and deduplicates retries of the same answer.
type Submission struct {
	EventID          uuid.UUID `json:"event_id"`
	TermID           uuid.UUID `json:"term_id"`
	Quality          int       `json:"quality"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// Result is the outcome of a processed (or replayed) review.
type Result struct {
	State           *domain.ReviewState             `json:"state"`
	XPEarned        int                             `json:"xp_earned"`
	Replayed        bool                            `json:"replayed"`
	StreakChange    domain.StreakChange             `json:"streak_change"`
	NewAchievements []*domain.AchievementDefinition `json:"new_achievements,omitempty"`
}

// QueueItem is one entry of a review queue: a term with its scheduling
// state, or a never-seen term when IsNew is set.
type QueueItem struct {
	Term  *domain.VocabularyTerm `json:"term"`
	State *domain.ReviewState    `json:"state,omitempty"`
	IsNew bool                   `json:"is_new"`
}

// Queue is an ordered review queue: all due items first, then new items up
// to the session cap.
type Queue struct {
	Items    []QueueItem `json:"items"`
	DueCount int         `json:"due_count"`
	NewCount int         `json:"new_count"`
}

// Service provides review submission and queue construction.
type Service interface {
	// SubmitReview applies one review answer: it advances the term's
	// scheduling state, records the practice event, folds the activity into
	// the day's aggregates and streak, and evaluates achievements, all in
	// one transaction. A replayed event id returns the stored outcome
	// without reapplying side effects.
	SubmitReview(ctx context.Context, userID uuid.UUID, sub Submission) (*Result, error)

	// BuildQueue returns up to limit items: due terms ordered
	// hardest-pressed first, backfilled with never-reviewed terms up to the
	// configured session cap. An empty category means no filter.
	BuildQueue(ctx context.Context, userID uuid.UUID, category string, limit int) (*Queue, error)
}
