package progress_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/achievement"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/progress"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store/storetest"
)

func testLearningConfig() config.LearningConfig {
	return config.LearningConfig{
		NewItemSessionCap:       3,
		MaxIntervalDays:         365,
		MasteryMinRepetitions:   2,
		MasteryMinEaseFactor:    2.0,
		StreakRiskCutoffHour:    20,
		DefaultDailyGoalMinutes: 15,
	}
}

func testStores(mem *storetest.Mem) progress.Stores {
	return progress.Stores{
		Terms:        mem.TermStore(),
		States:       mem.ReviewStateStore(),
		Events:       mem.PracticeEventStore(),
		Daily:        mem.DailyProgressStore(),
		Streaks:      mem.StreakStore(),
		Achievements: mem.AchievementStore(),
		Users:        mem.UserStore(),
	}
}

func newServiceWithStores(t *testing.T, stores progress.Stores) progress.Service {
	t.Helper()

	cfg := testLearningConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := progress.NewRecorder(achievement.NewEvaluator(log), cfg, log)
	return progress.NewService(nil, stores, recorder, storetest.RunTx, cfg, log)
}

func newTestService(t *testing.T, mem *storetest.Mem) progress.Service {
	t.Helper()
	return newServiceWithStores(t, testStores(mem))
}

func seedUser(mem *storetest.Mem, goalMinutes int) *domain.UserProfile {
	user := &domain.UserProfile{
		ID:               uuid.New(),
		DailyGoalMinutes: goalMinutes,
	}
	mem.AddUser(user)
	return user
}

func TestSessionXP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		modality domain.Modality
		items    int
		minutes  int
		want     int
	}{
		{"vocab items", domain.ModalityVocab, 10, 0, 20},
		{"listening items", domain.ModalityListening, 3, 0, 30},
		{"speaking items", domain.ModalitySpeaking, 2, 0, 30},
		{"time bonus alone", domain.ModalityListening, 0, 12, 2},
		{"items plus bonus", domain.ModalitySpeaking, 1, 10, 17},
		{"sub-threshold minutes earn no bonus", domain.ModalityVocab, 1, 4, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, progress.SessionXP(tt.modality, tt.items, tt.minutes))
		})
	}
}

func TestRecordSessionListening(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	result, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalityListening,
		ItemsCompleted:   2,
		TimeSpentSeconds: 600,
	})
	require.NoError(t, err)

	// 2 items at 10 XP plus 2 bonus XP for 10 minutes.
	assert.Equal(t, 22, result.XPEarned)
	assert.False(t, result.Replayed)
	require.NotNil(t, result.Daily)
	assert.Equal(t, 2, result.Daily.ListeningCompleted)
	assert.Equal(t, 10, result.Daily.PracticeMinutes)
	assert.False(t, result.Daily.GoalMet)
	require.NotNil(t, result.Streak)
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.True(t, result.StreakChange.Increased)

	profile, err := mem.UserStore().Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 22, profile.TotalXP)
}

func TestRecordSessionMeetsDailyGoal(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	first, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalitySpeaking,
		ItemsCompleted:   1,
		TimeSpentSeconds: 600,
	})
	require.NoError(t, err)
	assert.False(t, first.Daily.GoalMet)

	second, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalityListening,
		ItemsCompleted:   1,
		TimeSpentSeconds: 360,
	})
	require.NoError(t, err)

	// 10 + 6 minutes crosses the 15 minute goal.
	assert.True(t, second.Daily.GoalMet)
	assert.Equal(t, 16, second.Daily.PracticeMinutes)
	// Second session on the same day does not extend the streak.
	assert.Equal(t, 1, second.Streak.CurrentStreak)
	assert.True(t, second.StreakChange.Maintained)
	assert.False(t, second.StreakChange.Increased)
}

func TestRecordSessionGoalFallsBackToDefault(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 0) // profile carries no goal
	svc := newTestService(t, mem)

	result, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalityListening,
		ItemsCompleted:   1,
		TimeSpentSeconds: 900,
	})
	require.NoError(t, err)

	// 15 minutes meets the configured default goal.
	assert.True(t, result.Daily.GoalMet)
}

// unseenStreakStore reports no streak row on the locking read even when one
// exists, standing in for a user's first-ever event whose concurrent twin
// commits the row between the SELECT FOR UPDATE miss and the INSERT.
type unseenStreakStore struct {
	store.StreakStore
}

func (s *unseenStreakStore) GetForUpdate(
	_ context.Context,
	_ uuid.UUID,
) (*domain.Streak, error) {
	return nil, store.ErrStreakNotFound
}

func (s *unseenStreakStore) WithTx(_ *sql.Tx) store.StreakStore { return s }

func TestRecordSessionFirstEventRaceIsConflict(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)

	stores := testStores(mem)
	stores.Streaks = &unseenStreakStore{StreakStore: mem.StreakStore()}
	svc := newServiceWithStores(t, stores)

	// The concurrent winner already committed the user's streak row.
	now := time.Now().UTC()
	require.NoError(t, mem.StreakStore().Create(context.Background(), &domain.Streak{
		UserID:           user.ID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastPracticeDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))

	_, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalityListening,
		ItemsCompleted:   1,
		TimeSpentSeconds: 120,
	})

	// The loser surfaces a retryable conflict, not a bare duplicate that
	// would read as a server error.
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestRecordSessionReplayIsIdempotent(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	sub := progress.SessionSubmission{
		EventID:          uuid.New(),
		Modality:         domain.ModalitySpeaking,
		ItemsCompleted:   2,
		TimeSpentSeconds: 300,
	}

	first, err := svc.RecordSession(context.Background(), user.ID, sub)
	require.NoError(t, err)
	require.False(t, first.Replayed)

	replay, err := svc.RecordSession(context.Background(), user.ID, sub)
	require.NoError(t, err)

	assert.True(t, replay.Replayed)
	assert.Equal(t, first.XPEarned, replay.XPEarned)
	require.NotNil(t, replay.Daily)
	assert.Equal(t, 2, replay.Daily.SpeakingCompleted)

	profile, err := mem.UserStore().Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.XPEarned, profile.TotalXP)
}

func TestRecordSessionUnlocksListeningMilestone(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	mem.AddDefinition(&domain.AchievementDefinition{
		ID:        uuid.New(),
		Code:      "first_listen",
		Title:     "All Ears",
		Metric:    domain.MetricListeningCompleted,
		Threshold: 1,
		XPReward:  50,
	})
	svc := newTestService(t, mem)

	result, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:        uuid.New(),
		Modality:       domain.ModalityListening,
		ItemsCompleted: 1,
	})
	require.NoError(t, err)

	require.Len(t, result.NewAchievements, 1)
	assert.Equal(t, "first_listen", result.NewAchievements[0].Code)

	// 10 session XP plus the 50 XP unlock reward.
	profile, err := mem.UserStore().Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, profile.TotalXP)

	// A second session does not re-unlock or re-award.
	result, err = svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:        uuid.New(),
		Modality:       domain.ModalityListening,
		ItemsCompleted: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, result.NewAchievements)
}

func TestRecordSessionRejectsBadInput(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	_, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		Modality: domain.ModalityVocab,
	})
	assert.ErrorIs(t, err, progress.ErrInvalidSession)

	_, err = svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:  uuid.New(),
		Modality: "osmosis",
	})
	assert.ErrorIs(t, err, progress.ErrInvalidSession)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
		EventID:        uuid.New(),
		Modality:       domain.ModalityVocab,
		ItemsCompleted: -1,
	})
	assert.ErrorIs(t, err, progress.ErrInvalidSession)
}

func TestGetStatsAssemblesReport(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	mem.AddDefinition(&domain.AchievementDefinition{
		ID:        uuid.New(),
		Code:      "listening_5",
		Title:     "Tuned In",
		Metric:    domain.MetricListeningCompleted,
		Threshold: 5,
		XPReward:  100,
		SortOrder: 2,
	})
	svc := newTestService(t, mem)

	for i := 0; i < 2; i++ {
		_, err := svc.RecordSession(context.Background(), user.ID, progress.SessionSubmission{
			EventID:          uuid.New(),
			Modality:         domain.ModalityListening,
			ItemsCompleted:   1,
			TimeSpentSeconds: 300,
		})
		require.NoError(t, err)
	}

	report, err := svc.GetStats(context.Background(), user.ID, time.Time{}, time.Time{})
	require.NoError(t, err)

	// Defaults: a trailing 30 day window ending today.
	assert.Equal(t, report.End.AddDate(0, 0, -29), report.Start)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 2, report.Totals.ListeningCompleted)
	assert.Equal(t, 10, report.Totals.PracticeMinutes)
	assert.Equal(t, 1, report.Totals.DaysActive)
	assert.Equal(t, 1, report.Streak.CurrentStreak)

	require.Len(t, report.Achievements, 1)
	status := report.Achievements[0]
	assert.False(t, status.Unlocked)
	assert.InDelta(t, 40, status.ProgressPercent, 0.0001)
	assert.Equal(t, report.Totals.XPEarned, report.LifetimeXP)
}

func TestGetStatsRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetStats(context.Background(), user.ID, start, end)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetStatsEmptyUserGetsZeroReport(t *testing.T) {
	t.Parallel()

	mem := storetest.NewMem()
	user := seedUser(mem, 15)
	svc := newTestService(t, mem)

	report, err := svc.GetStats(context.Background(), user.ID, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Empty(t, report.Days)
	assert.Equal(t, 0, report.Streak.CurrentStreak)
	assert.False(t, report.Streak.IsAtRisk)
	assert.Equal(t, 0, report.LifetimeXP)
}
