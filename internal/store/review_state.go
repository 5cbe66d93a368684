package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// DueEntry pairs a due vocabulary term with its scheduling state.
type DueEntry struct {
	Term  *domain.VocabularyTerm
	State *domain.ReviewState
}

// CategoryMasteryRow aggregates one category's learning progress for a user.
type CategoryMasteryRow struct {
	Category string
	Total    int // terms in the catalog for this category
	Learned  int // terms with a review state row
	Mastered int // terms satisfying the mastery policy
	Due      int // learned terms past their next review time
}

// ReviewStateStore defines the interface for review scheduling state
// persistence. Rows are keyed by (user_id, term_id) and mutated only by the
// scheduler.
type ReviewStateStore interface {
	// Get retrieves review state without any row locking.
	// Returns ErrReviewStateNotFound if no state exists yet.
	Get(ctx context.Context, userID, termID uuid.UUID) (*domain.ReviewState, error)

	// GetForUpdate retrieves review state with a row-level lock using
	// SELECT FOR UPDATE. Must be called inside a transaction when the row
	// will be updated, so concurrent submissions for the same item are
	// serialized rather than silently clobbering each other.
	// Returns ErrReviewStateNotFound if no state exists yet.
	GetForUpdate(ctx context.Context, userID, termID uuid.UUID) (*domain.ReviewState, error)

	// Create saves state for a term's first exposure to a user.
	// Returns ErrConflict if a concurrent first submission already
	// created state for the pair.
	Create(ctx context.Context, state *domain.ReviewState) error

	// Update modifies existing state identified by (UserID, TermID).
	// Returns ErrReviewStateNotFound if the row does not exist.
	Update(ctx context.Context, state *domain.ReviewState) error

	// ListDue returns due terms with their states, ordered by
	// (next_review_at, ease_factor, term_id) ascending: hardest-pressed
	// first with a deterministic tiebreak. An empty category means no
	// filter.
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		category string,
		limit int,
	) ([]DueEntry, error)

	// CategoryMastery aggregates per-category totals for a user using the
	// supplied mastery cutoffs.
	CategoryMastery(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		minRepetitions int,
		minEaseFactor float64,
	) ([]CategoryMasteryRow, error)

	// WithTx returns a ReviewStateStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}
