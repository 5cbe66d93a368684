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

// PostgresUserStore implements the store.UserStore interface using
// PostgreSQL as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgresUserStore with the given
// database connection or transaction.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore.
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx}
}

// Get implements store.UserStore.Get.
func (s *PostgresUserStore) Get(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, timezone_offset_minutes, daily_goal_minutes, total_xp,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.UserProfile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.TimezoneOffsetMinutes,
		&user.DailyGoalMinutes,
		&user.TotalXP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user profile",
			"user_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &user, nil
}

// AddXP implements store.UserStore.AddXP. The increment happens in the
// database so concurrent awards never lose an update.
func (s *PostgresUserStore) AddXP(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	log := logger.FromContext(ctx)

	query := `
		UPDATE users
		SET total_xp = total_xp + $2, updated_at = $3
		WHERE id = $1
		RETURNING total_xp
	`

	var newTotal int
	err := s.db.QueryRowContext(ctx, query, id, delta, time.Now().UTC()).Scan(&newTotal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrUserNotFound
		}
		log.Error("failed to add user XP",
			"user_id", id,
			"delta", delta,
			"error", err)
		return 0, fmt.Errorf("failed to add user XP: %w", err)
	}

	return newTotal, nil
}
