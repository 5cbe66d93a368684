package sm2

import (
	"math"
	"time"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease adjustment for a successful
// recall:
//
//	EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
//
// The result is floor-clamped at params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(5 - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))
	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	return newEF
}

// calculateNewInterval determines the next interval in days after a
// successful recall, given the repetition count after incrementing.
//
// The first two successful recalls use fixed intervals; after that the
// previous interval is multiplied by the updated ease factor. Growth is
// capped at params.MaxIntervalDays.
func calculateNewInterval(previousInterval, repetitions int, easeFactor float64, params *Params) int {
	var interval int
	switch repetitions {
	case 1:
		interval = params.FirstInterval
	case 2:
		interval = params.SecondInterval
	default:
		interval = int(math.Round(float64(previousInterval) * easeFactor))
	}

	if interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// calculateNextState computes the review state after applying a quality
// rating, following the immutable update pattern: the input state is never
// modified, a new state is returned.
//
// A failed recall (quality < 3) resets the repetition chain and schedules
// the item for tomorrow; ease is only lowered when a penalty is configured.
// A successful recall never moves NextReviewAt earlier than its current
// value, so reviewing an item ahead of schedule cannot shorten its horizon.
func calculateNextState(
	state *domain.ReviewState,
	quality int,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	next := *state
	next.TotalReviews++
	next.LastReviewedAt = now
	next.UpdatedAt = now

	if quality < 3 {
		next.Repetitions = 0
		next.IntervalDays = 1
		next.EaseFactor = state.EaseFactor - params.FailEasePenalty
		if next.EaseFactor < params.MinEaseFactor {
			next.EaseFactor = params.MinEaseFactor
		}
		next.NextReviewAt = now.AddDate(0, 0, 1)
		return &next
	}

	next.CorrectReviews++
	next.Repetitions = state.Repetitions + 1
	next.EaseFactor = calculateNewEaseFactor(state.EaseFactor, quality, params)
	next.IntervalDays = calculateNewInterval(
		state.IntervalDays,
		next.Repetitions,
		next.EaseFactor,
		params,
	)

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	if next.NextReviewAt.Before(state.NextReviewAt) {
		next.NextReviewAt = state.NextReviewAt
	}
	return &next
}
