// Package achievement evaluates the declarative unlock catalog against a
// user's metrics snapshot. Evaluation is shared by the review and progress
// services and always runs inside the caller's transaction so unlocks commit
// or roll back together with the activity that triggered them.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// Evaluator checks every catalog definition against a snapshot and records
// the unlocks the snapshot newly satisfies.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{
		logger: log.With(slog.String("component", "achievement_evaluator")),
	}
}

// Evaluate inserts an unlock row for every definition whose metric has
// reached its threshold and awards the XP rewards to the user's total. The
// stores must be bound to the caller's transaction. The insert's
// rows-affected check keeps unlocks exactly-once: a definition the user
// already holds inserts nothing and awards nothing.
//
// Rewards earned here are not fed back into the snapshot; an XP-milestone
// achievement crossed only by unlock bonuses is picked up on the user's
// next activity.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	achievements store.AchievementStore,
	users store.UserStore,
	userID uuid.UUID,
	snapshot domain.MetricsSnapshot,
	now time.Time,
) ([]*domain.AchievementDefinition, int, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	defs, err := achievements.ListDefinitions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list achievement definitions: %w", err)
	}

	var unlocked []*domain.AchievementDefinition
	bonusXP := 0
	for _, def := range defs {
		if snapshot.Value(def.Metric) < def.Threshold {
			continue
		}

		inserted, err := achievements.InsertUnlock(ctx, &domain.AchievementUnlock{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    now,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to record achievement unlock: %w", err)
		}
		if !inserted {
			// Already unlocked on an earlier evaluation.
			continue
		}

		log.Info("achievement unlocked",
			slog.String("user_id", userID.String()),
			slog.String("code", def.Code),
			slog.Int("xp_reward", def.XPReward))
		unlocked = append(unlocked, def)
		bonusXP += def.XPReward
	}

	if bonusXP > 0 {
		if _, err := users.AddXP(ctx, userID, bonusXP); err != nil {
			return nil, 0, fmt.Errorf("failed to award achievement XP: %w", err)
		}
	}

	return unlocked, bonusXP, nil
}
