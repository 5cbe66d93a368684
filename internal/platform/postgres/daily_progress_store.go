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

// PostgresDailyProgressStore implements the store.DailyProgressStore
// interface using PostgreSQL as the storage backend.
type PostgresDailyProgressStore struct {
	db store.DBTX
}

// NewPostgresDailyProgressStore creates a new PostgresDailyProgressStore
// with the given database connection or transaction.
func NewPostgresDailyProgressStore(db store.DBTX) *PostgresDailyProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresDailyProgressStore{db: db}
}

// Ensure PostgresDailyProgressStore implements store.DailyProgressStore.
var _ store.DailyProgressStore = (*PostgresDailyProgressStore)(nil)

// WithTx implements store.DailyProgressStore.WithTx.
func (s *PostgresDailyProgressStore) WithTx(tx *sql.Tx) store.DailyProgressStore {
	return &PostgresDailyProgressStore{db: tx}
}

// Get implements store.DailyProgressStore.Get.
func (s *PostgresDailyProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
) (*domain.DailyProgress, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT user_id, date, vocab_reviewed, listening_completed,
		       speaking_completed, practice_minutes, xp_earned, goal_met,
		       created_at, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND date = $2
	`

	var p domain.DailyProgress
	err := s.db.QueryRowContext(ctx, query, userID, day).Scan(
		&p.UserID,
		&p.Date,
		&p.VocabReviewed,
		&p.ListeningCompleted,
		&p.SpeakingCompleted,
		&p.PracticeMinutes,
		&p.XPEarned,
		&p.GoalMet,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to get daily progress",
			"user_id", userID,
			"date", day.Format("2006-01-02"),
			"error", err)
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}

	return &p, nil
}

// Apply implements store.DailyProgressStore.Apply. The upsert makes the
// increment atomic: concurrent events for the same day both land, and
// goal_met is recomputed from the post-increment minutes inside the same
// statement so it can flip from false to true but never back.
func (s *PostgresDailyProgressStore) Apply(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	delta store.DailyDelta,
	goalMinutes int,
) (*domain.DailyProgress, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	query := `
		INSERT INTO daily_progress (
			user_id, date, vocab_reviewed, listening_completed,
			speaking_completed, practice_minutes, xp_earned, goal_met,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $6 >= $8, $9, $9)
		ON CONFLICT (user_id, date) DO UPDATE SET
			vocab_reviewed      = daily_progress.vocab_reviewed + EXCLUDED.vocab_reviewed,
			listening_completed = daily_progress.listening_completed + EXCLUDED.listening_completed,
			speaking_completed  = daily_progress.speaking_completed + EXCLUDED.speaking_completed,
			practice_minutes    = daily_progress.practice_minutes + EXCLUDED.practice_minutes,
			xp_earned           = daily_progress.xp_earned + EXCLUDED.xp_earned,
			goal_met            = daily_progress.goal_met OR
			                      (daily_progress.practice_minutes + EXCLUDED.practice_minutes >= $8),
			updated_at          = EXCLUDED.updated_at
		RETURNING user_id, date, vocab_reviewed, listening_completed,
		          speaking_completed, practice_minutes, xp_earned, goal_met,
		          created_at, updated_at
	`

	var p domain.DailyProgress
	err := s.db.QueryRowContext(ctx, query,
		userID,
		day,
		delta.VocabReviewed,
		delta.ListeningCompleted,
		delta.SpeakingCompleted,
		delta.PracticeMinutes,
		delta.XPEarned,
		goalMinutes,
		now,
	).Scan(
		&p.UserID,
		&p.Date,
		&p.VocabReviewed,
		&p.ListeningCompleted,
		&p.SpeakingCompleted,
		&p.PracticeMinutes,
		&p.XPEarned,
		&p.GoalMet,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to apply daily progress delta",
			"user_id", userID,
			"date", day.Format("2006-01-02"),
			"error", err)
		return nil, fmt.Errorf("failed to apply daily progress delta: %w", err)
	}

	return &p, nil
}

// Totals implements store.DailyProgressStore.Totals.
func (s *PostgresDailyProgressStore) Totals(ctx context.Context, userID uuid.UUID) (*store.LifetimeTotals, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT COALESCE(SUM(vocab_reviewed), 0),
		       COALESCE(SUM(listening_completed), 0),
		       COALESCE(SUM(speaking_completed), 0),
		       COALESCE(SUM(practice_minutes), 0),
		       COALESCE(SUM(xp_earned), 0),
		       COUNT(*)
		FROM daily_progress
		WHERE user_id = $1
	`

	var totals store.LifetimeTotals
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&totals.VocabReviewed,
		&totals.ListeningCompleted,
		&totals.SpeakingCompleted,
		&totals.PracticeMinutes,
		&totals.XPEarned,
		&totals.DaysActive,
	)
	if err != nil {
		log.Error("failed to sum lifetime totals",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to sum lifetime totals: %w", err)
	}

	return &totals, nil
}

// ListRange implements store.DailyProgressStore.ListRange.
func (s *PostgresDailyProgressStore) ListRange(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*domain.DailyProgress, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT user_id, date, vocab_reviewed, listening_completed,
		       speaking_completed, practice_minutes, xp_earned, goal_met,
		       created_at, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		log.Error("failed to list daily progress range",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to list daily progress range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.DailyProgress
	for rows.Next() {
		var p domain.DailyProgress
		if err := rows.Scan(
			&p.UserID,
			&p.Date,
			&p.VocabReviewed,
			&p.ListeningCompleted,
			&p.SpeakingCompleted,
			&p.PracticeMinutes,
			&p.XPEarned,
			&p.GoalMet,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily progress row: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily progress rows: %w", err)
	}

	return result, nil
}
