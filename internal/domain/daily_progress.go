package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyProgress accumulates one user's activity for one local calendar day.
// It is created lazily on the first event of the day and becomes append-only
// history after day rollover.
type DailyProgress struct {
	UserID             uuid.UUID `json:"user_id"`
	Date               time.Time `json:"date"` // local calendar day, midnight UTC encoding
	VocabReviewed      int       `json:"vocab_reviewed"`
	ListeningCompleted int       `json:"listening_completed"`
	SpeakingCompleted  int       `json:"speaking_completed"`
	PracticeMinutes    int       `json:"practice_minutes"`
	XPEarned           int       `json:"xp_earned"`
	GoalMet            bool      `json:"goal_met"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TotalActivities is the number of completed activities across modalities.
func (d *DailyProgress) TotalActivities() int {
	return d.VocabReviewed + d.ListeningCompleted + d.SpeakingCompleted
}
