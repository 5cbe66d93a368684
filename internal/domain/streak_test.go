package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreakAdvance_FirstPractice(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New()}

	change := s.Advance(day(2026, 3, 1))

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	assert.True(t, change.Maintained)
	assert.True(t, change.Increased)
	assert.True(t, change.NewRecord)
}

func TestStreakAdvance_SameDayIsNoOp(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New()}
	s.Advance(day(2026, 3, 1))

	change := s.Advance(day(2026, 3, 1))

	assert.Equal(t, 1, s.CurrentStreak)
	assert.True(t, change.Maintained)
	assert.False(t, change.Increased)
}

func TestStreakAdvance_ConsecutiveDays(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New()}

	for i := 1; i <= 5; i++ {
		s.Advance(day(2026, 3, i))
	}

	assert.Equal(t, 5, s.CurrentStreak)
	assert.Equal(t, 5, s.LongestStreak)
}

func TestStreakAdvance_GapConsumesFreeze(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New(), FreezeCount: 1}
	s.Advance(day(2026, 3, 1))
	s.Advance(day(2026, 3, 2))

	// Two missed days, one freeze available.
	change := s.Advance(day(2026, 3, 5))

	assert.Equal(t, 2, s.CurrentStreak, "freeze preserves the chain")
	assert.Equal(t, 0, s.FreezeCount, "freeze consumed exactly once")
	assert.True(t, change.Maintained)
	assert.True(t, change.FrozeUsed)
	assert.False(t, change.Increased)
}

func TestStreakAdvance_GapWithoutFreezeResets(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New()}
	s.Advance(day(2026, 3, 1))
	s.Advance(day(2026, 3, 2))
	s.Advance(day(2026, 3, 3))

	change := s.Advance(day(2026, 3, 10))

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak, "longest survives the reset")
	assert.False(t, change.Maintained)
	assert.False(t, change.FrozeUsed)
}

func TestStreakAdvance_LongestReconciledAfterRebuild(t *testing.T) {
	t.Parallel()
	s := &Streak{UserID: uuid.New()}
	s.Advance(day(2026, 3, 1))
	s.Advance(day(2026, 3, 2))
	s.Advance(day(2026, 3, 10)) // reset

	var lastChange StreakChange
	for i := 11; i <= 13; i++ {
		lastChange = s.Advance(day(2026, 3, i))
	}

	assert.Equal(t, 4, s.CurrentStreak)
	assert.Equal(t, 4, s.LongestStreak)
	assert.True(t, lastChange.NewRecord)
}

func TestStreakAtRisk(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		streak   Streak
		localNow time.Time
		expected bool
	}{
		{
			name:     "no streak yet",
			streak:   Streak{},
			localNow: time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "practiced today",
			streak:   Streak{CurrentStreak: 3, LastPracticeDate: day(2026, 3, 2)},
			localNow: time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "no practice today, before cutoff",
			streak:   Streak{CurrentStreak: 3, LastPracticeDate: day(2026, 3, 1)},
			localNow: time.Date(2026, 3, 2, 19, 59, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "no practice today, past cutoff",
			streak:   Streak{CurrentStreak: 3, LastPracticeDate: day(2026, 3, 1)},
			localNow: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC),
			expected: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.streak.AtRisk(tc.localNow, 20))
		})
	}
}
