package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using PostgreSQL as the storage backend.
type PostgresReviewStateStore struct {
	db store.DBTX
}

// NewPostgresReviewStateStore creates a new PostgresReviewStateStore with the
// given database connection or transaction.
func NewPostgresReviewStateStore(db store.DBTX) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresReviewStateStore{db: db}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore.
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// WithTx implements store.ReviewStateStore.WithTx.
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{db: tx}
}

const reviewStateColumns = `user_id, term_id, ease_factor, interval_days, repetitions,
		next_review_at, last_reviewed_at, total_reviews, correct_reviews,
		created_at, updated_at`

func scanReviewState(row *sql.Row) (*domain.ReviewState, error) {
	var state domain.ReviewState
	var lastReviewed sql.NullTime
	err := row.Scan(
		&state.UserID,
		&state.TermID,
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&state.NextReviewAt,
		&lastReviewed,
		&state.TotalReviews,
		&state.CorrectReviews,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		state.LastReviewedAt = lastReviewed.Time
	}
	return &state, nil
}

// Get implements store.ReviewStateStore.Get.
func (s *PostgresReviewStateStore) Get(ctx context.Context, userID, termID uuid.UUID) (*domain.ReviewState, error) {
	return s.get(ctx, userID, termID, false)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate. The row lock
// serializes concurrent submissions for the same (user, term) pair.
func (s *PostgresReviewStateStore) GetForUpdate(ctx context.Context, userID, termID uuid.UUID) (*domain.ReviewState, error) {
	return s.get(ctx, userID, termID, true)
}

func (s *PostgresReviewStateStore) get(
	ctx context.Context,
	userID, termID uuid.UUID,
	forUpdate bool,
) (*domain.ReviewState, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND term_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	state, err := scanReviewState(s.db.QueryRowContext(ctx, query, userID, termID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewStateNotFound
		}
		log.Error("failed to get review state",
			"user_id", userID,
			"term_id", termID,
			"error", err)
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}
	return state, nil
}

// Create implements store.ReviewStateStore.Create.
func (s *PostgresReviewStateStore) Create(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContext(ctx)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_states (` + reviewStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var lastReviewed sql.NullTime
	if !state.LastReviewedAt.IsZero() {
		lastReviewed = sql.NullTime{Time: state.LastReviewedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		state.UserID,
		state.TermID,
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.NextReviewAt,
		lastReviewed,
		state.TotalReviews,
		state.CorrectReviews,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent first submission for the same pair won the
			// insert. The caller retries or reports a conflict, not a
			// server error.
			return fmt.Errorf("%w: review state already exists for user %s term %s",
				store.ErrConflict, state.UserID, state.TermID)
		}
		log.Error("failed to create review state",
			"user_id", state.UserID,
			"term_id", state.TermID,
			"error", err)
		return fmt.Errorf("failed to create review state: %w", err)
	}

	return nil
}

// Update implements store.ReviewStateStore.Update.
func (s *PostgresReviewStateStore) Update(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContext(ctx)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_states
		SET ease_factor = $3,
		    interval_days = $4,
		    repetitions = $5,
		    next_review_at = $6,
		    last_reviewed_at = $7,
		    total_reviews = $8,
		    correct_reviews = $9,
		    updated_at = $10
		WHERE user_id = $1 AND term_id = $2
	`

	var lastReviewed sql.NullTime
	if !state.LastReviewedAt.IsZero() {
		lastReviewed = sql.NullTime{Time: state.LastReviewedAt, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		state.UserID,
		state.TermID,
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.NextReviewAt,
		lastReviewed,
		state.TotalReviews,
		state.CorrectReviews,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update review state",
			"user_id", state.UserID,
			"term_id", state.TermID,
			"error", err)
		return fmt.Errorf("failed to update review state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrReviewStateNotFound
	}

	return nil
}

// ListDue implements store.ReviewStateStore.ListDue.
func (s *PostgresReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	category string,
	limit int,
) ([]store.DueEntry, error) {
	log := logger.FromContext(ctx)

	// Lowest ease first among equally-due items, so the terms the user
	// struggles with most surface at the front of the queue.
	query := `
		SELECT t.id, t.term, t.definition, t.category, t.difficulty, t.created_at,
		       rs.user_id, rs.term_id, rs.ease_factor, rs.interval_days,
		       rs.repetitions, rs.next_review_at, rs.last_reviewed_at,
		       rs.total_reviews, rs.correct_reviews, rs.created_at, rs.updated_at
		FROM review_states rs
		JOIN vocabulary_terms t ON t.id = rs.term_id
		WHERE rs.user_id = $1
		  AND rs.next_review_at <= $2
		  AND ($3 = '' OR t.category = $3)
		ORDER BY rs.next_review_at ASC, rs.ease_factor ASC, rs.term_id ASC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now, category, limit)
	if err != nil {
		log.Error("failed to list due review states",
			"user_id", userID,
			"category", category,
			"error", err)
		return nil, fmt.Errorf("failed to list due review states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []store.DueEntry
	for rows.Next() {
		var term domain.VocabularyTerm
		var state domain.ReviewState
		var lastReviewed sql.NullTime
		if err := rows.Scan(
			&term.ID,
			&term.Term,
			&term.Definition,
			&term.Category,
			&term.Difficulty,
			&term.CreatedAt,
			&state.UserID,
			&state.TermID,
			&state.EaseFactor,
			&state.IntervalDays,
			&state.Repetitions,
			&state.NextReviewAt,
			&lastReviewed,
			&state.TotalReviews,
			&state.CorrectReviews,
			&state.CreatedAt,
			&state.UpdatedAt,
		); err != nil {
			log.Error("failed to scan due entry row", "error", err)
			return nil, fmt.Errorf("failed to scan due entry row: %w", err)
		}
		if lastReviewed.Valid {
			state.LastReviewedAt = lastReviewed.Time
		}
		entries = append(entries, store.DueEntry{Term: &term, State: &state})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due entry rows: %w", err)
	}

	return entries, nil
}

// CategoryMastery implements store.ReviewStateStore.CategoryMastery.
func (s *PostgresReviewStateStore) CategoryMastery(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	minRepetitions int,
	minEaseFactor float64,
) ([]store.CategoryMasteryRow, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT t.category,
		       COUNT(t.id) AS total,
		       COUNT(rs.term_id) AS learned,
		       COUNT(rs.term_id) FILTER (
		           WHERE rs.repetitions >= $2 AND rs.ease_factor >= $3
		       ) AS mastered,
		       COUNT(rs.term_id) FILTER (
		           WHERE rs.next_review_at <= $4
		       ) AS due
		FROM vocabulary_terms t
		LEFT JOIN review_states rs
		       ON rs.term_id = t.id AND rs.user_id = $1
		GROUP BY t.category
		ORDER BY t.category ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, minRepetitions, minEaseFactor, now)
	if err != nil {
		log.Error("failed to aggregate category mastery",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate category mastery: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []store.CategoryMasteryRow
	for rows.Next() {
		var row store.CategoryMasteryRow
		if err := rows.Scan(&row.Category, &row.Total, &row.Learned, &row.Mastered, &row.Due); err != nil {
			return nil, fmt.Errorf("failed to scan category mastery row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category mastery rows: %w", err)
	}

	return result, nil
}
