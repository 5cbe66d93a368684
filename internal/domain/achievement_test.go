package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshotValue(t *testing.T) {
	t.Parallel()

	snapshot := MetricsSnapshot{
		TotalXP:            1200,
		CurrentStreak:      4,
		LongestStreak:      9,
		TermsLearned:       37,
		TermsMastered:      12,
		ListeningCompleted: 6,
		SpeakingCompleted:  2,
	}

	assert.Equal(t, 1200, snapshot.Value(MetricTotalXP))
	assert.Equal(t, 4, snapshot.Value(MetricCurrentStreak))
	assert.Equal(t, 9, snapshot.Value(MetricLongestStreak))
	assert.Equal(t, 37, snapshot.Value(MetricTermsLearned))
	assert.Equal(t, 12, snapshot.Value(MetricTermsMastered))
	assert.Equal(t, 6, snapshot.Value(MetricListeningCompleted))
	assert.Equal(t, 2, snapshot.Value(MetricSpeakingCompleted))
	assert.Equal(t, 0, snapshot.Value(MetricKind("bogus")))
}

func TestMetricsSnapshotProgressPercent(t *testing.T) {
	t.Parallel()

	def := &AchievementDefinition{
		ID:        uuid.New(),
		Code:      "vocab_50",
		Metric:    MetricTermsLearned,
		Threshold: 50,
	}

	assert.InDelta(t, 74, MetricsSnapshot{TermsLearned: 37}.ProgressPercent(def), 0.0001)
	assert.InDelta(t, 0, MetricsSnapshot{}.ProgressPercent(def), 0.0001)
	// Overshoot is capped for display.
	assert.InDelta(t, 100, MetricsSnapshot{TermsLearned: 80}.ProgressPercent(def), 0.0001)
}

func TestAchievementDefinitionValidate(t *testing.T) {
	t.Parallel()

	valid := func() *AchievementDefinition {
		return &AchievementDefinition{
			ID:        uuid.New(),
			Code:      "streak_7",
			Title:     "Week Warrior",
			Metric:    MetricCurrentStreak,
			Threshold: 7,
		}
	}

	assert.NoError(t, valid().Validate())

	d := valid()
	d.Code = ""
	assert.ErrorIs(t, d.Validate(), ErrEmptyAchievementCode)

	d = valid()
	d.Metric = "altitude"
	assert.ErrorIs(t, d.Validate(), ErrInvalidMetricKind)

	d = valid()
	d.Threshold = 0
	assert.ErrorIs(t, d.Validate(), ErrInvalidThreshold)
}
