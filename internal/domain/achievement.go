package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetricKind names an aggregate a threshold achievement is measured
// against. The set is closed: every kind is evaluated by the same generic
// comparison against a MetricsSnapshot, so adding a kind means adding a
// snapshot field, not a new code path.
type MetricKind string

const (
	MetricTotalXP            MetricKind = "total_xp"
	MetricCurrentStreak      MetricKind = "current_streak"
	MetricLongestStreak      MetricKind = "longest_streak"
	MetricTermsLearned       MetricKind = "terms_learned"
	MetricTermsMastered      MetricKind = "terms_mastered"
	MetricListeningCompleted MetricKind = "listening_completed"
	MetricSpeakingCompleted  MetricKind = "speaking_completed"
)

// ValidMetricKind reports whether k is part of the closed metric set.
func ValidMetricKind(k MetricKind) bool {
	switch k {
	case MetricTotalXP, MetricCurrentStreak, MetricLongestStreak,
		MetricTermsLearned, MetricTermsMastered,
		MetricListeningCompleted, MetricSpeakingCompleted:
		return true
	default:
		return false
	}
}

// Validation errors for achievement definitions.
var (
	ErrEmptyAchievementCode = errors.New("achievement code cannot be empty")
	ErrInvalidThreshold     = errors.New("achievement threshold must be positive")
)

// AchievementDefinition is a declarative unlock rule: when the named metric
// reaches Threshold the achievement unlocks and XPReward is awarded.
// Definitions are static configuration seeded into the catalog.
type AchievementDefinition struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"` // stable identifier, e.g. "vocab_50"
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Metric      MetricKind `json:"metric_kind"`
	Threshold   int        `json:"threshold"`
	XPReward    int        `json:"xp_reward"`
	SortOrder   int        `json:"sort_order"`
}

// Validate checks if the AchievementDefinition has valid data.
func (a *AchievementDefinition) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("%w: achievement ID", ErrInvalidID)
	}
	if a.Code == "" {
		return ErrEmptyAchievementCode
	}
	if !ValidMetricKind(a.Metric) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricKind, a.Metric)
	}
	if a.Threshold < 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// AchievementUnlock records that a user earned an achievement. Rows are
// write-once: a (user, achievement) pair unlocks at most once, ever.
type AchievementUnlock struct {
	UserID        uuid.UUID `json:"user_id"`
	AchievementID uuid.UUID `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// MetricsSnapshot is the point-in-time view of a user's aggregates that the
// achievement engine evaluates rules against. Evaluation is purely a
// function of this snapshot plus the existing unlock set.
type MetricsSnapshot struct {
	TotalXP            int
	CurrentStreak      int
	LongestStreak      int
	TermsLearned       int
	TermsMastered      int
	ListeningCompleted int
	SpeakingCompleted  int
}

// Value returns the snapshot's value for the given metric kind.
func (m MetricsSnapshot) Value(kind MetricKind) int {
	switch kind {
	case MetricTotalXP:
		return m.TotalXP
	case MetricCurrentStreak:
		return m.CurrentStreak
	case MetricLongestStreak:
		return m.LongestStreak
	case MetricTermsLearned:
		return m.TermsLearned
	case MetricTermsMastered:
		return m.TermsMastered
	case MetricListeningCompleted:
		return m.ListeningCompleted
	case MetricSpeakingCompleted:
		return m.SpeakingCompleted
	default:
		return 0
	}
}

// ProgressPercent reports how close the snapshot is to unlocking the given
// definition, capped at 100 for display purposes.
func (m MetricsSnapshot) ProgressPercent(def *AchievementDefinition) float64 {
	if def.Threshold <= 0 {
		return 0
	}
	pct := float64(m.Value(def.Metric)) / float64(def.Threshold) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
