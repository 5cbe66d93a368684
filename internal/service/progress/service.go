// Package progress folds practice events into per-day aggregates, streaks,
// and achievement unlocks, and assembles progress reports.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// Common progress service errors.
var (
	// ErrInvalidSession indicates a session submission that fails validation.
	ErrInvalidSession = fmt.Errorf("%w: invalid practice session", domain.ErrValidation)
)

// Per-item XP by modality, plus one bonus XP per five practice minutes.
const (
	xpPerVocabItem     = 2
	xpPerListeningItem = 10
	xpPerSpeakingItem  = 15
	minutesPerBonusXP  = 5
)

// SessionXP computes the XP award for a bulk practice session.
func SessionXP(modality domain.Modality, itemsCompleted, minutes int) int {
	perItem := 0
	switch modality {
	case domain.ModalityVocab:
		perItem = xpPerVocabItem
	case domain.ModalityListening:
		perItem = xpPerListeningItem
	case domain.ModalitySpeaking:
		perItem = xpPerSpeakingItem
	}
	return itemsCompleted*perItem + minutes/minutesPerBonusXP
}

// SessionSubmission records one completed practice session. EventID is
// supplied by the caller and deduplicates retries.
type SessionSubmission struct {
	EventID          uuid.UUID       `json:"event_id"`
	Modality         domain.Modality `json:"modality"`
	ItemsCompleted   int             `json:"items_completed"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
}

// SessionResult is the outcome of a recorded (or replayed) session.
type SessionResult struct {
	Daily           *domain.DailyProgress           `json:"daily_progress"`
	Streak          *domain.Streak                  `json:"streak"`
	StreakChange    domain.StreakChange             `json:"streak_change"`
	XPEarned        int                             `json:"xp_earned"`
	Replayed        bool                            `json:"replayed"`
	NewAchievements []*domain.AchievementDefinition `json:"new_achievements,omitempty"`
}

// CategoryStats reports one vocabulary category's mastery for a user.
type CategoryStats struct {
	Category       string  `json:"category"`
	DisplayName    string  `json:"display_name"`
	TotalTerms     int     `json:"total_terms"`
	TermsLearned   int     `json:"terms_learned"`
	TermsMastered  int     `json:"terms_mastered"`
	TermsDue       int     `json:"terms_due"`
	MasteryPercent float64 `json:"mastery_percent"`
}

// AchievementStatus pairs a catalog definition with the user's standing on
// it: unlocked with a timestamp, or locked with progress toward the
// threshold.
type AchievementStatus struct {
	Definition      *domain.AchievementDefinition `json:"definition"`
	Unlocked        bool                          `json:"unlocked"`
	UnlockedAt      time.Time                     `json:"unlocked_at,omitempty"`
	ProgressPercent float64                       `json:"progress_percent"`
}

// StreakReport is the streak with its derived at-risk flag.
type StreakReport struct {
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastPracticeDate time.Time `json:"last_practice_date,omitempty"`
	FreezeCount      int       `json:"freeze_count"`
	IsAtRisk         bool      `json:"is_at_risk"`
}

// StatsReport is the full progress report for a date range.
type StatsReport struct {
	Start        time.Time               `json:"start"`
	End          time.Time               `json:"end"`
	Days         []*domain.DailyProgress `json:"days"`
	Totals       RangeTotals             `json:"totals"`
	LifetimeXP   int                     `json:"lifetime_xp"`
	Streak       StreakReport            `json:"streak"`
	Categories   []CategoryStats         `json:"categories"`
	Achievements []AchievementStatus     `json:"achievements"`
}

// RangeTotals sums the report range's day rows.
type RangeTotals struct {
	VocabReviewed      int `json:"vocab_reviewed"`
	ListeningCompleted int `json:"listening_completed"`
	SpeakingCompleted  int `json:"speaking_completed"`
	PracticeMinutes    int `json:"practice_minutes"`
	XPEarned           int `json:"xp_earned"`
	DaysActive         int `json:"days_active"`
	DaysGoalMet        int `json:"days_goal_met"`
}

// Service provides session recording and progress reporting.
type Service interface {
	// RecordSession folds one listening, speaking, or bulk vocabulary
	// session into the user's aggregates, streak, and achievements in a
	// single transaction. A replayed event id returns the committed
	// aggregates without reapplying side effects.
	RecordSession(ctx context.Context, userID uuid.UUID, sub SessionSubmission) (*SessionResult, error)

	// GetStats assembles the progress report for [start, end] local days.
	// Zero times default to the trailing 30 days. start after end is a
	// validation error.
	GetStats(ctx context.Context, userID uuid.UUID, start, end time.Time) (*StatsReport, error)
}
