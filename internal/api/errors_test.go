package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/auth"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/review"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"term not found", review.ErrTermNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"conflict", store.ErrConflict, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("%w: gave up", store.ErrConflict), http.StatusConflict},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid quality", domain.ErrInvalidQuality, http.StatusBadRequest},
		{"invalid date range", domain.ErrInvalidDateRange, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrExpiredToken))
	assert.Equal(t, "User not found", GetSafeErrorMessage(store.ErrUserNotFound))
	assert.Equal(t, "Vocabulary term not found", GetSafeErrorMessage(review.ErrTermNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	// Internal detail never leaks for unknown errors.
	leaky := errors.New("pq: connection to db-internal.example refused")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(leaky))

	// Validation messages are written for clients and pass through.
	verr := fmt.Errorf("%w: got 7", domain.ErrInvalidQuality)
	assert.Equal(t, verr.Error(), GetSafeErrorMessage(verr))
}
