package sm2

import (
	"errors"
	"fmt"
	"time"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
)

// Common errors.
var (
	ErrNilState = errors.New("review state cannot be nil")
)

// xpByQuality maps a recall quality rating to the XP awarded for the
// review: harder-won recalls earn more than failed ones, perfect recall
// earns the most.
var xpByQuality = [6]int{0, 2, 3, 5, 8, 10}

// XPForQuality returns the XP reward for a quality rating, or 0 for
// out-of-range input.
func XPForQuality(quality int) int {
	if quality < 0 || quality > 5 {
		return 0
	}
	return xpByQuality[quality]
}

// Service defines the interface for scheduling operations.
type Service interface {
	// Apply computes new review state from a quality rating. Quality must
	// be in [0,5]; out-of-range values are rejected, never clamped.
	Apply(state *domain.ReviewState, quality int, now time.Time) (*domain.ReviewState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduler with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduler with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Apply implements Service.
func (s *defaultService) Apply(
	state *domain.ReviewState,
	quality int,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if quality < 0 || quality > 5 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuality, quality)
	}

	return calculateNextState(state, quality, now, s.params), nil
}
