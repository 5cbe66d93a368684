package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for VocabularyTerm.
var (
	ErrEmptyTerm         = errors.New("vocabulary term text cannot be empty")
	ErrEmptyCategory     = errors.New("vocabulary term category cannot be empty")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 5")
)

// VocabularyTerm is a catalog entry a learner can study. The catalog itself
// is authored externally; the engine only reads term metadata (category,
// difficulty) when building review queues and reporting mastery.
type VocabularyTerm struct {
	ID         uuid.UUID `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Category   string    `json:"category"`
	Difficulty int       `json:"difficulty"` // 1 (easiest) to 5 (hardest)
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks if the VocabularyTerm has valid data.
func (t *VocabularyTerm) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: term ID", ErrInvalidID)
	}
	if strings.TrimSpace(t.Term) == "" {
		return ErrEmptyTerm
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Difficulty < 1 || t.Difficulty > 5 {
		return ErrInvalidDifficulty
	}
	return nil
}

// CategoryDisplayName derives a human-readable name from a category code,
// e.g. "radio_calls" becomes "Radio Calls". Used as a fallback when the
// catalog carries no display metadata for a category.
func CategoryDisplayName(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
