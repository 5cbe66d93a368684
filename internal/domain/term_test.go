package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestVocabularyTermValidate(t *testing.T) {
	t.Parallel()

	valid := func() *VocabularyTerm {
		return &VocabularyTerm{
			ID:         uuid.New(),
			Term:       "squawk",
			Definition: "set the transponder code",
			Category:   "radio_calls",
			Difficulty: 2,
		}
	}

	assert.NoError(t, valid().Validate())

	term := valid()
	term.Term = "   "
	assert.ErrorIs(t, term.Validate(), ErrEmptyTerm)

	term = valid()
	term.Category = ""
	assert.ErrorIs(t, term.Validate(), ErrEmptyCategory)

	term = valid()
	term.Difficulty = 6
	assert.ErrorIs(t, term.Validate(), ErrInvalidDifficulty)

	term = valid()
	term.Difficulty = 0
	assert.ErrorIs(t, term.Validate(), ErrInvalidDifficulty)
}

func TestCategoryDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		want     string
	}{
		{"radio_calls", "Radio Calls"},
		{"weather", "Weather"},
		{"emergency_procedures", "Emergency Procedures"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryDisplayName(tt.category))
	}
}
