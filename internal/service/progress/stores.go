package progress

import (
	"database/sql"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// Stores bundles every store the learning engine touches so a whole bundle
// can be rebound to one transaction at once.
type Stores struct {
	Terms        store.TermStore
	States       store.ReviewStateStore
	Events       store.PracticeEventStore
	Daily        store.DailyProgressStore
	Streaks      store.StreakStore
	Achievements store.AchievementStore
	Users        store.UserStore
}

// WithTx returns a copy of the bundle with every store bound to tx.
func (s Stores) WithTx(tx *sql.Tx) Stores {
	return Stores{
		Terms:        s.Terms.WithTx(tx),
		States:       s.States.WithTx(tx),
		Events:       s.Events.WithTx(tx),
		Daily:        s.Daily.WithTx(tx),
		Streaks:      s.Streaks.WithTx(tx),
		Achievements: s.Achievements.WithTx(tx),
		Users:        s.Users.WithTx(tx),
	}
}
