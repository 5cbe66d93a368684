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

// PostgresPracticeEventStore implements the store.PracticeEventStore
// interface using PostgreSQL as the storage backend.
type PostgresPracticeEventStore struct {
	db store.DBTX
}

// NewPostgresPracticeEventStore creates a new PostgresPracticeEventStore
// with the given database connection or transaction.
func NewPostgresPracticeEventStore(db store.DBTX) *PostgresPracticeEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresPracticeEventStore{db: db}
}

// Ensure PostgresPracticeEventStore implements store.PracticeEventStore.
var _ store.PracticeEventStore = (*PostgresPracticeEventStore)(nil)

// WithTx implements store.PracticeEventStore.WithTx.
func (s *PostgresPracticeEventStore) WithTx(tx *sql.Tx) store.PracticeEventStore {
	return &PostgresPracticeEventStore{db: tx}
}

// Insert implements store.PracticeEventStore.Insert. ON CONFLICT DO NOTHING
// plus the rows-affected check is what makes event ids idempotent: a replay
// inserts nothing and reports applied=false without raising an error.
func (s *PostgresPracticeEventStore) Insert(ctx context.Context, event *domain.PracticeEvent) (bool, error) {
	log := logger.FromContext(ctx)

	if err := event.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO practice_events (
			event_id, user_id, modality, term_id, quality,
			time_spent_seconds, xp_earned, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	var termID interface{}
	if event.TermID != uuid.Nil {
		termID = event.TermID
	}

	result, err := s.db.ExecContext(ctx, query,
		event.EventID,
		event.UserID,
		event.Modality,
		termID,
		event.Quality,
		event.TimeSpentSeconds,
		event.XPEarned,
		event.OccurredAt,
	)
	if err != nil {
		log.Error("failed to insert practice event",
			"event_id", event.EventID,
			"user_id", event.UserID,
			"error", err)
		return false, fmt.Errorf("failed to insert practice event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected == 1, nil
}

// Get implements store.PracticeEventStore.Get.
func (s *PostgresPracticeEventStore) Get(ctx context.Context, eventID uuid.UUID) (*domain.PracticeEvent, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT event_id, user_id, modality, term_id, quality,
		       time_spent_seconds, xp_earned, occurred_at
		FROM practice_events
		WHERE event_id = $1
	`

	var event domain.PracticeEvent
	var termID uuid.NullUUID
	err := s.db.QueryRowContext(ctx, query, eventID).Scan(
		&event.EventID,
		&event.UserID,
		&event.Modality,
		&termID,
		&event.Quality,
		&event.TimeSpentSeconds,
		&event.XPEarned,
		&event.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to get practice event",
			"event_id", eventID,
			"error", err)
		return nil, fmt.Errorf("failed to get practice event: %w", err)
	}
	if termID.Valid {
		event.TermID = termID.UUID
	}

	return &event, nil
}
