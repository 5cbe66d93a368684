package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// PostgresAchievementStore implements the store.AchievementStore interface
// using PostgreSQL as the storage backend.
type PostgresAchievementStore struct {
	db store.DBTX
}

// NewPostgresAchievementStore creates a new PostgresAchievementStore with
// the given database connection or transaction.
func NewPostgresAchievementStore(db store.DBTX) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresAchievementStore{db: db}
}

// Ensure PostgresAchievementStore implements store.AchievementStore.
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// WithTx implements store.AchievementStore.WithTx.
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return &PostgresAchievementStore{db: tx}
}

// ListDefinitions implements store.AchievementStore.ListDefinitions.
func (s *PostgresAchievementStore) ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, code, title, description, metric_kind, threshold,
		       xp_reward, sort_order
		FROM achievements
		ORDER BY sort_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list achievement definitions", "error", err)
		return nil, fmt.Errorf("failed to list achievement definitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []*domain.AchievementDefinition
	for rows.Next() {
		var def domain.AchievementDefinition
		if err := rows.Scan(
			&def.ID,
			&def.Code,
			&def.Title,
			&def.Description,
			&def.Metric,
			&def.Threshold,
			&def.XPReward,
			&def.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan achievement definition row: %w", err)
		}
		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievement definition rows: %w", err)
	}

	return defs, nil
}

// ListUnlocks implements store.AchievementStore.ListUnlocks.
func (s *PostgresAchievementStore) ListUnlocks(ctx context.Context, userID uuid.UUID) ([]*domain.AchievementUnlock, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT user_id, achievement_id, unlocked_at
		FROM achievement_unlocks
		WHERE user_id = $1
		ORDER BY unlocked_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list achievement unlocks",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to list achievement unlocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var unlocks []*domain.AchievementUnlock
	for rows.Next() {
		var unlock domain.AchievementUnlock
		if err := rows.Scan(&unlock.UserID, &unlock.AchievementID, &unlock.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement unlock row: %w", err)
		}
		unlocks = append(unlocks, &unlock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievement unlock rows: %w", err)
	}

	return unlocks, nil
}

// InsertUnlock implements store.AchievementStore.InsertUnlock. The unique
// constraint on (user_id, achievement_id) plus ON CONFLICT DO NOTHING
// guarantees exactly one concurrent caller observes inserted=true, so the
// XP reward is awarded at most once.
func (s *PostgresAchievementStore) InsertUnlock(ctx context.Context, unlock *domain.AchievementUnlock) (bool, error) {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		unlock.UserID,
		unlock.AchievementID,
		unlock.UnlockedAt,
	)
	if err != nil {
		log.Error("failed to insert achievement unlock",
			"user_id", unlock.UserID,
			"achievement_id", unlock.AchievementID,
			"error", err)
		return false, fmt.Errorf("failed to insert achievement unlock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected == 1, nil
}
