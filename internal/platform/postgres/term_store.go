package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// PostgresTermStore implements the store.TermStore interface using
// PostgreSQL as the storage backend.
type PostgresTermStore struct {
	db store.DBTX
}

// NewPostgresTermStore creates a new PostgresTermStore with the given
// database connection or transaction.
func NewPostgresTermStore(db store.DBTX) *PostgresTermStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresTermStore{db: db}
}

// Ensure PostgresTermStore implements store.TermStore.
var _ store.TermStore = (*PostgresTermStore)(nil)

// WithTx implements store.TermStore.WithTx.
func (s *PostgresTermStore) WithTx(tx *sql.Tx) store.TermStore {
	return &PostgresTermStore{db: tx}
}

// GetByID implements store.TermStore.GetByID.
func (s *PostgresTermStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyTerm, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, term, definition, category, difficulty, created_at
		FROM vocabulary_terms
		WHERE id = $1
	`

	var term domain.VocabularyTerm
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&term.ID,
		&term.Term,
		&term.Definition,
		&term.Category,
		&term.Difficulty,
		&term.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary term not found", "term_id", id)
			return nil, store.ErrTermNotFound
		}
		log.Error("failed to get vocabulary term",
			"term_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get vocabulary term: %w", err)
	}

	return &term, nil
}

// ListUnreviewed implements store.TermStore.ListUnreviewed. The NOT EXISTS
// subquery excludes every term the user already has scheduling state for,
// so the result is exactly the user's unseen portion of the catalog.
func (s *PostgresTermStore) ListUnreviewed(
	ctx context.Context,
	userID uuid.UUID,
	category string,
	limit int,
) ([]*domain.VocabularyTerm, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT t.id, t.term, t.definition, t.category, t.difficulty, t.created_at
		FROM vocabulary_terms t
		WHERE NOT EXISTS (
			SELECT 1 FROM review_states rs
			WHERE rs.user_id = $1 AND rs.term_id = t.id
		)
		AND ($2 = '' OR t.category = $2)
		ORDER BY t.difficulty ASC, t.id ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, category, limit)
	if err != nil {
		log.Error("failed to list unreviewed terms",
			"user_id", userID,
			"category", category,
			"error", err)
		return nil, fmt.Errorf("failed to list unreviewed terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []*domain.VocabularyTerm
	for rows.Next() {
		var term domain.VocabularyTerm
		if err := rows.Scan(
			&term.ID,
			&term.Term,
			&term.Definition,
			&term.Category,
			&term.Difficulty,
			&term.CreatedAt,
		); err != nil {
			log.Error("failed to scan vocabulary term row", "error", err)
			return nil, fmt.Errorf("failed to scan vocabulary term row: %w", err)
		}
		terms = append(terms, &term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vocabulary term rows: %w", err)
	}

	return terms, nil
}
