package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation errors for PracticeEvent.
var (
	ErrEmptyEventID      = errors.New("practice event ID cannot be empty")
	ErrEmptyEventUserID  = errors.New("practice event user ID cannot be empty")
	ErrNegativeTimeSpent = errors.New("time spent cannot be negative")
)

// Modality identifies the kind of practice activity an event records.
type Modality string

const (
	ModalityVocab     Modality = "vocab"
	ModalityListening Modality = "listening"
	ModalitySpeaking  Modality = "speaking"
)

// ValidModality reports whether m is one of the known practice modalities.
func ValidModality(m Modality) bool {
	switch m {
	case ModalityVocab, ModalityListening, ModalitySpeaking:
		return true
	default:
		return false
	}
}

// PracticeEvent is one unit of learner activity: a vocabulary review, a
// completed listening exercise, or a speaking submission. The caller-supplied
// EventID deduplicates retries: an event id is applied at most once, and a
// replay returns the already-recorded outcome.
type PracticeEvent struct {
	EventID          uuid.UUID `json:"event_id"`
	UserID           uuid.UUID `json:"user_id"`
	Modality         Modality  `json:"modality"`
	TermID           uuid.UUID `json:"term_id,omitempty"` // vocab events only
	Quality          int       `json:"quality,omitempty"` // vocab events only, 0..5
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	XPEarned         int       `json:"xp_earned"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Validate checks the event's invariants. TermID is optional: per-term
// review events carry one, bulk session events do not. Quality is only
// meaningful for vocabulary events and must already have been range-checked
// by the scheduler; this guards the remaining fields.
func (e *PracticeEvent) Validate() error {
	if e.EventID == uuid.Nil {
		return ErrEmptyEventID
	}
	if e.UserID == uuid.Nil {
		return ErrEmptyEventUserID
	}
	if !ValidModality(e.Modality) {
		return ErrInvalidModality
	}
	if e.TimeSpentSeconds < 0 {
		return ErrNegativeTimeSpent
	}
	return nil
}

// LocalDay returns the calendar day the event belongs to in the user's local
// time, given their fixed timezone offset in minutes east of UTC. An offset
// of zero means the day boundary is UTC midnight, the fallback for users
// with no configured timezone.
func (e *PracticeEvent) LocalDay(offsetMinutes int) time.Time {
	local := e.OccurredAt.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
