package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// TermStore defines the interface for vocabulary catalog reads. The catalog
// is authored externally; the engine never writes to it.
type TermStore interface {
	// GetByID retrieves a vocabulary term by its unique ID.
	// Returns ErrTermNotFound if the term does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyTerm, error)

	// ListUnreviewed returns terms the user has never reviewed (no review
	// state row), ordered by difficulty ascending then term ID so the
	// result is deterministic. An empty category means no filter.
	ListUnreviewed(
		ctx context.Context,
		userID uuid.UUID,
		category string,
		limit int,
	) ([]*domain.VocabularyTerm, error)

	// WithTx returns a TermStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TermStore
}
