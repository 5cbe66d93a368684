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

// PostgresStreakStore implements the store.StreakStore interface using
// PostgreSQL as the storage backend.
type PostgresStreakStore struct {
	db store.DBTX
}

// NewPostgresStreakStore creates a new PostgresStreakStore with the given
// database connection or transaction.
func NewPostgresStreakStore(db store.DBTX) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresStreakStore{db: db}
}

// Ensure PostgresStreakStore implements store.StreakStore.
var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx implements store.StreakStore.WithTx.
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{db: tx}
}

// Get implements store.StreakStore.Get.
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	return s.get(ctx, userID, false)
}

// GetForUpdate implements store.StreakStore.GetForUpdate.
func (s *PostgresStreakStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	return s.get(ctx, userID, true)
}

func (s *PostgresStreakStore) get(ctx context.Context, userID uuid.UUID, forUpdate bool) (*domain.Streak, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT user_id, current_streak, longest_streak, last_practice_date,
		       freeze_count, created_at, updated_at
		FROM streaks
		WHERE user_id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var streak domain.Streak
	var lastPractice sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&streak.UserID,
		&streak.CurrentStreak,
		&streak.LongestStreak,
		&lastPractice,
		&streak.FreezeCount,
		&streak.CreatedAt,
		&streak.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStreakNotFound
		}
		log.Error("failed to get streak",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	if lastPractice.Valid {
		streak.LastPracticeDate = lastPractice.Time
	}

	return &streak, nil
}

// Create implements store.StreakStore.Create.
func (s *PostgresStreakStore) Create(ctx context.Context, streak *domain.Streak) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO streaks (
			user_id, current_streak, longest_streak, last_practice_date,
			freeze_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var lastPractice sql.NullTime
	if !streak.LastPracticeDate.IsZero() {
		lastPractice = sql.NullTime{Time: streak.LastPracticeDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		lastPractice,
		streak.FreezeCount,
		streak.CreatedAt,
		streak.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent first event already created the row. The
			// caller retries or reports a conflict, not a server error.
			return fmt.Errorf("%w: streak already exists for user %s",
				store.ErrConflict, streak.UserID)
		}
		log.Error("failed to create streak",
			"user_id", streak.UserID,
			"error", err)
		return fmt.Errorf("failed to create streak: %w", err)
	}

	return nil
}

// Update implements store.StreakStore.Update.
func (s *PostgresStreakStore) Update(ctx context.Context, streak *domain.Streak) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE streaks
		SET current_streak = $2,
		    longest_streak = $3,
		    last_practice_date = $4,
		    freeze_count = $5,
		    updated_at = $6
		WHERE user_id = $1
	`

	var lastPractice sql.NullTime
	if !streak.LastPracticeDate.IsZero() {
		lastPractice = sql.NullTime{Time: streak.LastPracticeDate, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		lastPractice,
		streak.FreezeCount,
		streak.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update streak",
			"user_id", streak.UserID,
			"error", err)
		return fmt.Errorf("failed to update streak: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrStreakNotFound
	}

	return nil
}
