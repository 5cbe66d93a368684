package domain

import (
	"time"

	"github.com/google/uuid"
)

// Streak tracks day-to-day practice continuity for one user. There is one
// row per user, updated at most once per calendar-day transition.
type Streak struct {
	UserID           uuid.UUID `json:"user_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastPracticeDate time.Time `json:"last_practice_date"` // zero until first practice
	FreezeCount      int       `json:"freeze_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StreakChange describes what an Advance call did to the streak.
type StreakChange struct {
	Maintained bool // the chain survived (including freeze rescues and same-day repeats)
	Increased  bool // current streak went up
	FrozeUsed  bool // a freeze was consumed to bridge a gap
	NewRecord  bool // longest streak improved
}

// Advance applies a day transition for a practice on the given local
// calendar day. Same-day repeats are no-ops; a one-day gap extends the
// chain; a longer gap consumes a freeze when one is available and otherwise
// resets the chain to 1. LongestStreak is reconciled after every update.
func (s *Streak) Advance(practiceDate time.Time) StreakChange {
	day := truncateToDay(practiceDate)
	change := StreakChange{}

	switch {
	case s.LastPracticeDate.IsZero():
		// First ever practice.
		s.CurrentStreak = 1
		s.LastPracticeDate = day
		change.Maintained = true
		change.Increased = true

	default:
		gap := int(day.Sub(truncateToDay(s.LastPracticeDate)).Hours() / 24)
		switch {
		case gap <= 0:
			// Already counted this day.
			change.Maintained = true
			return change
		case gap == 1:
			s.CurrentStreak++
			s.LastPracticeDate = day
			change.Maintained = true
			change.Increased = true
		case s.FreezeCount > 0:
			// A freeze bridges the missed days; the chain is preserved.
			s.FreezeCount--
			s.LastPracticeDate = day
			change.Maintained = true
			change.FrozeUsed = true
		default:
			s.CurrentStreak = 1
			s.LastPracticeDate = day
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
		change.NewRecord = true
	}
	return change
}

// AtRisk reports whether the streak is in danger of breaking: the user has
// not practiced today and the local time has passed the cutoff hour.
func (s *Streak) AtRisk(localNow time.Time, cutoffHour int) bool {
	if s.CurrentStreak == 0 || s.LastPracticeDate.IsZero() {
		return false
	}
	today := truncateToDay(localNow)
	if !truncateToDay(s.LastPracticeDate).Before(today) {
		return false
	}
	return localNow.Hour() >= cutoffHour
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
