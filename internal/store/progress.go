package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// DailyDelta is the per-event increment applied to a day's aggregate row.
type DailyDelta struct {
	VocabReviewed      int
	ListeningCompleted int
	SpeakingCompleted  int
	// PracticeMinutes is the event's time spent truncated to whole
	// minutes. A review under sixty seconds contributes zero; the
	// remainder is not carried over between events.
	PracticeMinutes int
	XPEarned        int
}

// LifetimeTotals sums a user's activity across all recorded days. Feeds
// the achievement metrics snapshot and the stats report.
type LifetimeTotals struct {
	VocabReviewed      int
	ListeningCompleted int
	SpeakingCompleted  int
	PracticeMinutes    int
	XPEarned           int
	DaysActive         int
}

// DailyProgressStore persists per-day activity aggregates keyed by
// (user_id, date).
type DailyProgressStore interface {
	// Get retrieves the aggregate for one day.
	// Returns ErrNotFound if no activity was recorded that day.
	Get(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DailyProgress, error)

	// Apply upserts the day row and atomically adds the delta to its
	// counters. goalMinutes is the user's configured daily goal; the
	// store recomputes goal_met from the post-increment minutes so the
	// flag can only flip from false to true. Returns the updated row.
	Apply(
		ctx context.Context,
		userID uuid.UUID,
		day time.Time,
		delta DailyDelta,
		goalMinutes int,
	) (*domain.DailyProgress, error)

	// ListRange returns day rows in [start, end], ordered by date ascending.
	ListRange(
		ctx context.Context,
		userID uuid.UUID,
		start, end time.Time,
	) ([]*domain.DailyProgress, error)

	// Totals sums all of a user's day rows. A user with no recorded
	// activity gets zero totals, not an error.
	Totals(ctx context.Context, userID uuid.UUID) (*LifetimeTotals, error)

	// WithTx returns a DailyProgressStore bound to the provided transaction.
	WithTx(tx *sql.Tx) DailyProgressStore
}

// PracticeEventStore is the idempotency ledger. Every externally supplied
// event id is recorded before its side effects are applied; a duplicate id
// turns the whole operation into a read of the already-applied outcome.
type PracticeEventStore interface {
	// Insert records the event. It reports false (and no error) when the
	// event id was already recorded, which signals a replay.
	Insert(ctx context.Context, event *domain.PracticeEvent) (applied bool, err error)

	// Get retrieves a previously recorded event by id.
	// Returns ErrNotFound for unknown ids.
	Get(ctx context.Context, eventID uuid.UUID) (*domain.PracticeEvent, error)

	// WithTx returns a PracticeEventStore bound to the provided transaction.
	WithTx(tx *sql.Tx) PracticeEventStore
}

// StreakStore persists the single streak row per user.
type StreakStore interface {
	// Get retrieves the user's streak without locking.
	// Returns ErrStreakNotFound if the user has never practiced.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error)

	// GetForUpdate retrieves the streak with a row-level lock; call inside
	// a transaction before advancing the streak so per-user updates are
	// serialized. Returns ErrStreakNotFound if no row exists yet.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Streak, error)

	// Create inserts the initial streak row for a user. Returns
	// ErrConflict if a concurrent first event already created it.
	Create(ctx context.Context, streak *domain.Streak) error

	// Update saves an advanced streak.
	// Returns ErrStreakNotFound if the row does not exist.
	Update(ctx context.Context, streak *domain.Streak) error

	// WithTx returns a StreakStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StreakStore
}

// AchievementStore persists the static definition catalog and the
// write-once unlock rows.
type AchievementStore interface {
	// ListDefinitions returns the full achievement catalog ordered by
	// sort_order.
	ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error)

	// ListUnlocks returns the user's unlocked achievements.
	ListUnlocks(ctx context.Context, userID uuid.UUID) ([]*domain.AchievementUnlock, error)

	// InsertUnlock records an unlock. It reports false (and no error) when
	// the (user, achievement) pair is already unlocked, which makes
	// concurrent evaluation race-safe: exactly one caller observes true.
	InsertUnlock(ctx context.Context, unlock *domain.AchievementUnlock) (inserted bool, err error)

	// WithTx returns an AchievementStore bound to the provided transaction.
	WithTx(tx *sql.Tx) AchievementStore
}

// UserStore reads the profile mirror and accumulates XP totals.
type UserStore interface {
	// Get retrieves a user profile.
	// Returns ErrUserNotFound if the user is unknown.
	Get(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)

	// AddXP atomically adds delta to the user's XP total and returns the
	// new total. Returns ErrUserNotFound if the user is unknown.
	AddXP(ctx context.Context, id uuid.UUID, delta int) (int, error)

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
