package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// Verify interface compliance at compile time.
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db       *sql.DB
	stores   Stores
	recorder *Recorder
	runTx    store.TxRunner
	cfg      config.LearningConfig
	logger   *slog.Logger
}

// NewService creates a progress Service.
func NewService(
	db *sql.DB,
	stores Stores,
	recorder *Recorder,
	runTx store.TxRunner,
	cfg config.LearningConfig,
	log *slog.Logger,
) Service {
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if runTx == nil {
		panic("runTx cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &serviceImpl{
		db:       db,
		stores:   stores,
		recorder: recorder,
		runTx:    runTx,
		cfg:      cfg,
		logger:   log.With(slog.String("component", "progress_service")),
	}
}

// RecordSession implements Service.RecordSession.
func (s *serviceImpl) RecordSession(
	ctx context.Context,
	userID uuid.UUID,
	sub SessionSubmission,
) (*SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if sub.EventID == uuid.Nil {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidSession)
	}
	if !domain.ValidModality(sub.Modality) {
		return nil, fmt.Errorf("%w: unknown modality %q", ErrInvalidSession, sub.Modality)
	}
	if sub.ItemsCompleted < 0 {
		return nil, fmt.Errorf("%w: items completed cannot be negative", ErrInvalidSession)
	}
	if sub.TimeSpentSeconds < 0 {
		return nil, fmt.Errorf("%w: time spent cannot be negative", ErrInvalidSession)
	}

	now := time.Now().UTC()
	minutes := sub.TimeSpentSeconds / 60
	xp := SessionXP(sub.Modality, sub.ItemsCompleted, minutes)

	var result *SessionResult
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txs := s.stores.WithTx(tx)

		user, err := txs.Users.Get(ctx, userID)
		if err != nil {
			return err
		}

		event := &domain.PracticeEvent{
			EventID:          sub.EventID,
			UserID:           userID,
			Modality:         sub.Modality,
			TimeSpentSeconds: sub.TimeSpentSeconds,
			XPEarned:         xp,
			OccurredAt:       now,
		}
		// Bulk vocab sessions have no single term; the ledger row carries
		// only the count via the daily delta.
		delta := store.DailyDelta{
			PracticeMinutes: minutes,
			XPEarned:        xp,
		}
		switch sub.Modality {
		case domain.ModalityVocab:
			delta.VocabReviewed = sub.ItemsCompleted
			event.TermID = uuid.Nil
		case domain.ModalityListening:
			delta.ListeningCompleted = sub.ItemsCompleted
		case domain.ModalitySpeaking:
			delta.SpeakingCompleted = sub.ItemsCompleted
		}

		outcome, applied, err := s.recorder.Apply(ctx, txs, user, event, delta, nil)
		if err != nil {
			return err
		}

		earned := xp
		if !applied {
			stored, err := txs.Events.Get(ctx, sub.EventID)
			if err != nil {
				return fmt.Errorf("failed to read replayed event: %w", err)
			}
			earned = stored.XPEarned
		}

		result = &SessionResult{
			Daily:           outcome.Daily,
			Streak:          outcome.Streak,
			StreakChange:    outcome.StreakChange,
			XPEarned:        earned,
			Replayed:        !applied,
			NewAchievements: outcome.NewAchievements,
		}
		return nil
	})
	if err != nil {
		log.Error("failed to record practice session",
			slog.String("user_id", userID.String()),
			slog.String("event_id", sub.EventID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("recorded practice session",
		slog.String("user_id", userID.String()),
		slog.String("modality", string(sub.Modality)),
		slog.Int("xp_earned", result.XPEarned),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

// GetStats implements Service.GetStats.
func (s *serviceImpl) GetStats(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) (*StatsReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.stores.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	localNow := user.LocalNow(time.Now())
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)
	if end.IsZero() {
		end = today
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -29)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s",
			domain.ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	days, err := s.stores.Daily.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	totals := RangeTotals{DaysActive: len(days)}
	for _, d := range days {
		totals.VocabReviewed += d.VocabReviewed
		totals.ListeningCompleted += d.ListeningCompleted
		totals.SpeakingCompleted += d.SpeakingCompleted
		totals.PracticeMinutes += d.PracticeMinutes
		totals.XPEarned += d.XPEarned
		if d.GoalMet {
			totals.DaysGoalMet++
		}
	}

	streakReport, streak, err := s.streakReport(ctx, userID, localNow)
	if err != nil {
		return nil, err
	}

	categories, learned, mastered, err := s.categoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	lifetime, err := s.stores.Daily.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := domain.MetricsSnapshot{
		TotalXP:            user.TotalXP,
		CurrentStreak:      streak.CurrentStreak,
		LongestStreak:      streak.LongestStreak,
		TermsLearned:       learned,
		TermsMastered:      mastered,
		ListeningCompleted: lifetime.ListeningCompleted,
		SpeakingCompleted:  lifetime.SpeakingCompleted,
	}
	achievements, err := s.achievementStatuses(ctx, userID, snapshot)
	if err != nil {
		return nil, err
	}

	log.Debug("assembled progress stats",
		slog.String("user_id", userID.String()),
		slog.Int("days", len(days)))

	return &StatsReport{
		Start:        start,
		End:          end,
		Days:         days,
		Totals:       totals,
		LifetimeXP:   user.TotalXP,
		Streak:       streakReport,
		Categories:   categories,
		Achievements: achievements,
	}, nil
}

func (s *serviceImpl) streakReport(
	ctx context.Context,
	userID uuid.UUID,
	localNow time.Time,
) (StreakReport, *domain.Streak, error) {
	streak, err := s.stores.Streaks.Get(ctx, userID)
	if errors.Is(err, store.ErrStreakNotFound) {
		streak = &domain.Streak{UserID: userID}
	} else if err != nil {
		return StreakReport{}, nil, err
	}

	return StreakReport{
		CurrentStreak:    streak.CurrentStreak,
		LongestStreak:    streak.LongestStreak,
		LastPracticeDate: streak.LastPracticeDate,
		FreezeCount:      streak.FreezeCount,
		IsAtRisk:         streak.AtRisk(localNow, s.cfg.StreakRiskCutoffHour),
	}, streak, nil
}

func (s *serviceImpl) categoryStats(
	ctx context.Context,
	userID uuid.UUID,
) ([]CategoryStats, int, int, error) {
	rows, err := s.stores.States.CategoryMastery(
		ctx, userID, time.Now().UTC(),
		s.cfg.MasteryMinRepetitions, s.cfg.MasteryMinEaseFactor)
	if err != nil {
		return nil, 0, 0, err
	}

	var categories []CategoryStats
	learned, mastered := 0, 0
	for _, row := range rows {
		learned += row.Learned
		mastered += row.Mastered
		pct := 0.0
		if row.Total > 0 {
			pct = float64(row.Mastered) / float64(row.Total) * 100
		}
		categories = append(categories, CategoryStats{
			Category:       row.Category,
			DisplayName:    domain.CategoryDisplayName(row.Category),
			TotalTerms:     row.Total,
			TermsLearned:   row.Learned,
			TermsMastered:  row.Mastered,
			TermsDue:       row.Due,
			MasteryPercent: pct,
		})
	}
	return categories, learned, mastered, nil
}

func (s *serviceImpl) achievementStatuses(
	ctx context.Context,
	userID uuid.UUID,
	snapshot domain.MetricsSnapshot,
) ([]AchievementStatus, error) {
	defs, err := s.stores.Achievements.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.stores.Achievements.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlockedAt := make(map[uuid.UUID]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	statuses := make([]AchievementStatus, 0, len(defs))
	for _, def := range defs {
		status := AchievementStatus{Definition: def}
		if at, ok := unlockedAt[def.ID]; ok {
			status.Unlocked = true
			status.UnlockedAt = at
			status.ProgressPercent = 100
		} else {
			status.ProgressPercent = snapshot.ProgressPercent(def)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
