package sm2

import (
	"testing"
	"time"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceApply_RejectsOutOfRangeQuality(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Now().UTC()
	state := newTestState(t, now)

	for _, quality := range []int{-1, 6, 100} {
		_, err := service.Apply(state, quality, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidQuality)
	}
}

func TestServiceApply_NilState(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	_, err := service.Apply(nil, 4, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNilState)
}

func TestServiceApply_QualityFourKeepsDefaultEase(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Now().UTC()
	state := newTestState(t, now)

	next, err := service.Apply(state, 4, now)
	require.NoError(t, err)
	// The SM-2 delta for quality 4 is exactly zero.
	assert.InDelta(t, domain.DefaultEaseFactor, next.EaseFactor, 0.0001)
	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays)
}

func TestXPForQuality(t *testing.T) {
	t.Parallel()

	expected := map[int]int{0: 0, 1: 2, 2: 3, 3: 5, 4: 8, 5: 10}
	for quality, xp := range expected {
		assert.Equal(t, xp, XPForQuality(quality), "quality %d", quality)
	}

	assert.Equal(t, 0, XPForQuality(-1))
	assert.Equal(t, 0, XPForQuality(6))
}

func TestMasteryPolicy(t *testing.T) {
	t.Parallel()
	policy := DefaultMasteryPolicy()
	now := time.Now().UTC()

	state := newTestState(t, now)
	assert.False(t, policy.IsMastered(state), "fresh state cannot be mastered")

	state.Repetitions = 2
	state.EaseFactor = 2.0
	assert.True(t, policy.IsMastered(state))

	state.EaseFactor = 1.9
	assert.False(t, policy.IsMastered(state), "ease below cutoff")
}
