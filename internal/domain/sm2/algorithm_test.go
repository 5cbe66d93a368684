package sm2

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, now time.Time) *domain.ReviewState {
	t.Helper()
	state, err := domain.NewReviewState(uuid.New(), uuid.New(), now)
	require.NoError(t, err)
	return state
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		quality  int
		expected float64
	}{
		{"perfect recall raises ease", 2.5, 5, 2.6},
		{"hesitant recall lowers ease", 2.5, 3, 2.36},
		{"quality four leaves ease unchanged", 2.5, 4, 2.5},
		{"ease never drops below floor", 1.3, 3, 1.3},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calculateNewEaseFactor(tc.current, tc.quality, params)
			assert.InDelta(t, tc.expected, got, 0.0001)
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name         string
		prevInterval int
		repetitions  int
		ease         float64
		expected     int
	}{
		{"first success is one day", 0, 1, 2.5, 1},
		{"second success is six days", 1, 2, 2.5, 6},
		{"third success multiplies by ease", 6, 3, 2.5, 15},
		{"rounding to nearest day", 6, 3, 2.36, 14},
		{"growth capped at a year", 300, 5, 2.5, 365},
		{"interval never below one day", 0, 3, 1.3, 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calculateNewInterval(tc.prevInterval, tc.repetitions, tc.ease, params)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCalculateNextState_SuccessSequence(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := newTestState(t, now)

	// Three consecutive perfect recalls walk the 1, 6, round(6*ease) ladder.
	first := calculateNextState(state, 5, now, params)
	assert.Equal(t, 1, first.Repetitions)
	assert.Equal(t, 1, first.IntervalDays)
	assert.InDelta(t, 2.6, first.EaseFactor, 0.0001)
	assert.Equal(t, now.AddDate(0, 0, 1), first.NextReviewAt)

	second := calculateNextState(first, 5, first.NextReviewAt, params)
	assert.Equal(t, 2, second.Repetitions)
	assert.Equal(t, 6, second.IntervalDays)
	assert.InDelta(t, 2.7, second.EaseFactor, 0.0001)

	third := calculateNextState(second, 5, second.NextReviewAt, params)
	assert.Equal(t, 3, third.Repetitions)
	// round(6 * 2.8) = 17
	assert.Equal(t, 17, third.IntervalDays)
}

func TestCalculateNextState_FailResetsChain(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := newTestState(t, now)
	state.Repetitions = 4
	state.IntervalDays = 30
	state.EaseFactor = 2.2

	next := calculateNextState(state, 2, now, params)

	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 1), next.NextReviewAt)
	// No penalty configured, so a fail leaves ease where it was.
	assert.InDelta(t, 2.2, next.EaseFactor, 0.0001)
	assert.Equal(t, state.CorrectReviews, next.CorrectReviews)
	assert.Equal(t, state.TotalReviews+1, next.TotalReviews)
}

func TestCalculateNextState_FailPenaltyClampedAtFloor(t *testing.T) {
	t.Parallel()
	params := NewParams(ParamsConfig{FailEasePenalty: 0.2})
	now := time.Now().UTC()
	state := newTestState(t, now)
	state.EaseFactor = 1.4

	next := calculateNextState(state, 0, now, params)
	assert.InDelta(t, domain.MinEaseFactor, next.EaseFactor, 0.0001)
}

func TestCalculateNextState_ImmutableInput(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()
	state := newTestState(t, now)
	before := *state

	_ = calculateNextState(state, 5, now, params)
	assert.Equal(t, before, *state)
}

func TestCalculateNextState_NextReviewNeverMovesEarlier(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	state := newTestState(t, now)
	state.Repetitions = 1
	state.IntervalDays = 1
	// Scheduled far out; an early successful review must not pull it closer.
	state.NextReviewAt = now.AddDate(0, 0, 30)

	next := calculateNextState(state, 3, now, params)
	assert.False(t, next.NextReviewAt.Before(state.NextReviewAt),
		"successful review moved next_review_at earlier")
}

func TestCalculateNextState_IntervalCap(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()
	state := newTestState(t, now)
	state.Repetitions = 10
	state.IntervalDays = 300
	state.EaseFactor = 2.5

	next := calculateNextState(state, 5, now, params)
	assert.Equal(t, params.MaxIntervalDays, next.IntervalDays)
}
