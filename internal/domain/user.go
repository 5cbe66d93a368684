package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the slice of identity data the engine needs: the day
// boundary (timezone offset), the daily goal, and the running XP total.
// Identity and session management live in an external service; this mirror
// is kept in the durable store so aggregation can run without a remote call.
type UserProfile struct {
	ID                    uuid.UUID `json:"id"`
	TimezoneOffsetMinutes int       `json:"timezone_offset_minutes"` // east of UTC; 0 means UTC
	DailyGoalMinutes      int       `json:"daily_goal_minutes"`
	TotalXP               int       `json:"total_xp"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// LocalNow converts an instant into the user's local clock.
func (u *UserProfile) LocalNow(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(u.TimezoneOffsetMinutes) * time.Minute)
}
