package sm2

import "github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// MinEaseFactor is the floor for ease after any adjustment.
	MinEaseFactor float64

	// FailEasePenalty is subtracted from ease on a failed recall
	// (quality < 3). Zero by default: a fail never raises ease, and only
	// lowers it when a penalty is explicitly configured.
	FailEasePenalty float64

	// FirstInterval and SecondInterval are the fixed intervals (in days)
	// for the first and second consecutive successful recalls.
	FirstInterval  int
	SecondInterval int

	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
}

// ParamsConfig allows overriding defaults when creating a Params instance.
type ParamsConfig struct {
	FailEasePenalty float64
	MaxIntervalDays int
}

// NewDefaultParams creates a Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:   domain.MinEaseFactor,
		FailEasePenalty: 0,
		FirstInterval:   1,
		SecondInterval:  6,
		MaxIntervalDays: 365,
	}
}

// NewParams creates a Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()
	if config.FailEasePenalty > 0 {
		params.FailEasePenalty = config.FailEasePenalty
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	return params
}

// MasteryPolicy is the named cutoff deciding when an item counts as
// "mastered" for reporting. The exact numbers are policy, not algorithm, so
// they stay overridable via configuration.
type MasteryPolicy struct {
	MinRepetitions int
	MinEaseFactor  float64
}

// DefaultMasteryPolicy returns the standard mastery cutoff.
func DefaultMasteryPolicy() MasteryPolicy {
	return MasteryPolicy{MinRepetitions: 2, MinEaseFactor: 2.0}
}

// IsMastered reports whether a review state satisfies the policy.
func (p MasteryPolicy) IsMastered(state *domain.ReviewState) bool {
	return state.Repetitions >= p.MinRepetitions && state.EaseFactor >= p.MinEaseFactor
}
