package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/achievement"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// ActivityOutcome describes everything one applied practice event changed:
// the day's aggregates, the streak, and any achievements it tipped over
// their thresholds.
type ActivityOutcome struct {
	Daily           *domain.DailyProgress
	Streak          *domain.Streak
	StreakChange    domain.StreakChange
	TotalXP         int
	NewAchievements []*domain.AchievementDefinition
}

// Recorder folds practice events into the durable aggregates. It is the
// single write path for daily progress, streaks, and achievement unlocks;
// both the review and session flows go through it so the ledger semantics
// stay in one place.
type Recorder struct {
	evaluator *achievement.Evaluator
	cfg       config.LearningConfig
	logger    *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(evaluator *achievement.Evaluator, cfg config.LearningConfig, log *slog.Logger) *Recorder {
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		evaluator: evaluator,
		cfg:       cfg,
		logger:    log.With(slog.String("component", "progress_recorder")),
	}
}

// Apply records the event in the ledger and, when the event id is fresh,
// folds its delta into daily progress, XP, the streak, and achievement
// evaluation. All writes go through the transaction the bundle is bound to.
// onApplied, when non-nil, runs right after a fresh ledger insert and before
// the achievement snapshot is taken; the review flow persists its scheduling
// state there so the snapshot counts it.
//
// A replayed event id applies nothing; the returned outcome reflects the
// already-committed aggregates and applied is false.
func (r *Recorder) Apply(
	ctx context.Context,
	s Stores,
	user *domain.UserProfile,
	event *domain.PracticeEvent,
	delta store.DailyDelta,
	onApplied func(ctx context.Context) error,
) (*ActivityOutcome, bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	day := event.LocalDay(user.TimezoneOffsetMinutes)

	applied, err := s.Events.Insert(ctx, event)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		log.Debug("practice event replayed",
			slog.String("event_id", event.EventID.String()),
			slog.String("user_id", event.UserID.String()))
		outcome, err := r.currentOutcome(ctx, s, user, day)
		if err != nil {
			return nil, false, err
		}
		return outcome, false, nil
	}

	if onApplied != nil {
		if err := onApplied(ctx); err != nil {
			return nil, false, err
		}
	}

	goal := user.DailyGoalMinutes
	if goal <= 0 {
		goal = r.cfg.DefaultDailyGoalMinutes
	}

	daily, err := s.Daily.Apply(ctx, user.ID, day, delta, goal)
	if err != nil {
		return nil, false, err
	}

	totalXP := user.TotalXP
	if delta.XPEarned > 0 {
		totalXP, err = s.Users.AddXP(ctx, user.ID, delta.XPEarned)
		if err != nil {
			return nil, false, err
		}
	}

	streak, change, err := r.advanceStreak(ctx, s, user, day)
	if err != nil {
		return nil, false, err
	}

	snapshot, err := r.buildSnapshot(ctx, s, user, totalXP, streak)
	if err != nil {
		return nil, false, err
	}

	unlocked, bonusXP, err := r.evaluator.Evaluate(
		ctx, s.Achievements, s.Users, user.ID, snapshot, event.OccurredAt)
	if err != nil {
		return nil, false, err
	}

	return &ActivityOutcome{
		Daily:           daily,
		Streak:          streak,
		StreakChange:    change,
		TotalXP:         totalXP + bonusXP,
		NewAchievements: unlocked,
	}, true, nil
}

// advanceStreak locks the user's streak row, applies the day transition,
// and persists the result. The first event ever creates the row.
func (r *Recorder) advanceStreak(
	ctx context.Context,
	s Stores,
	user *domain.UserProfile,
	day time.Time,
) (*domain.Streak, domain.StreakChange, error) {
	now := time.Now().UTC()

	streak, err := s.Streaks.GetForUpdate(ctx, user.ID)
	switch {
	case errors.Is(err, store.ErrStreakNotFound):
		streak = &domain.Streak{
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		change := streak.Advance(day)
		if err := s.Streaks.Create(ctx, streak); err != nil {
			return nil, domain.StreakChange{}, err
		}
		return streak, change, nil
	case err != nil:
		return nil, domain.StreakChange{}, err
	}

	change := streak.Advance(day)
	streak.UpdatedAt = now
	if err := s.Streaks.Update(ctx, streak); err != nil {
		return nil, domain.StreakChange{}, err
	}
	return streak, change, nil
}

// buildSnapshot assembles the metrics snapshot the achievement rules are
// evaluated against, seen through the current transaction.
func (r *Recorder) buildSnapshot(
	ctx context.Context,
	s Stores,
	user *domain.UserProfile,
	totalXP int,
	streak *domain.Streak,
) (domain.MetricsSnapshot, error) {
	totals, err := s.Daily.Totals(ctx, user.ID)
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}

	rows, err := s.States.CategoryMastery(
		ctx, user.ID, time.Now().UTC(),
		r.cfg.MasteryMinRepetitions, r.cfg.MasteryMinEaseFactor)
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	learned, mastered := 0, 0
	for _, row := range rows {
		learned += row.Learned
		mastered += row.Mastered
	}

	return domain.MetricsSnapshot{
		TotalXP:            totalXP,
		CurrentStreak:      streak.CurrentStreak,
		LongestStreak:      streak.LongestStreak,
		TermsLearned:       learned,
		TermsMastered:      mastered,
		ListeningCompleted: totals.ListeningCompleted,
		SpeakingCompleted:  totals.SpeakingCompleted,
	}, nil
}

// currentOutcome reads the committed aggregates for a replayed event
// without modifying anything.
func (r *Recorder) currentOutcome(
	ctx context.Context,
	s Stores,
	user *domain.UserProfile,
	day time.Time,
) (*ActivityOutcome, error) {
	outcome := &ActivityOutcome{TotalXP: user.TotalXP}

	daily, err := s.Daily.Get(ctx, user.ID, day)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to read daily progress for replay: %w", err)
	}
	outcome.Daily = daily

	streak, err := s.Streaks.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrStreakNotFound) {
		return nil, fmt.Errorf("failed to read streak for replay: %w", err)
	}
	outcome.Streak = streak

	return outcome, nil
}
