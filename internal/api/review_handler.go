// Package api provides HTTP handlers for the learning-progress API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/api/middleware"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/api/shared"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/review"
)

// defaultQueueLimit is used when the queue request carries no limit param.
const defaultQueueLimit = 20

// SubmitReviewRequest is the body of POST /api/reviews.
type SubmitReviewRequest struct {
	EventID          uuid.UUID `json:"event_id"           validate:"required"`
	TermID           uuid.UUID `json:"term_id"            validate:"required"`
	Quality          *int      `json:"quality"            validate:"required,gte=0,lte=5"`
	TimeSpentSeconds int       `json:"time_spent_seconds" validate:"gte=0"`
}

// ReviewStateResponse is the scheduling state slice returned to clients.
type ReviewStateResponse struct {
	TermID         uuid.UUID `json:"term_id"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	NextReviewAt   time.Time `json:"next_review_at"`
	TotalReviews   int       `json:"total_reviews"`
	CorrectReviews int       `json:"correct_reviews"`
}

// SubmitReviewResponse is the body returned by POST /api/reviews.
type SubmitReviewResponse struct {
	State           *ReviewStateResponse            `json:"state,omitempty"`
	XPEarned        int                             `json:"xp_earned"`
	Replayed        bool                            `json:"replayed"`
	StreakChange    domain.StreakChange             `json:"streak_change"`
	NewAchievements []*domain.AchievementDefinition `json:"new_achievements,omitempty"`
}

// ReviewHandler handles review-related HTTP requests.
type ReviewHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService review.Service, log *slog.Logger) *ReviewHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /api/reviews requests.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, review.Submission{
		EventID:          req.EventID,
		TermID:           req.TermID,
		Quality:          *req.Quality,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		status, msg := statusAndMessage(err)
		shared.RespondWithErrorAndLog(w, r, status, msg, err)
		return
	}

	resp := SubmitReviewResponse{
		XPEarned:        result.XPEarned,
		Replayed:        result.Replayed,
		StreakChange:    result.StreakChange,
		NewAchievements: result.NewAchievements,
	}
	if result.State != nil {
		resp.State = toReviewStateResponse(result.State)
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.Bool("replayed", result.Replayed))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetQueue handles GET /api/reviews/queue requests.
func (h *ReviewHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := defaultQueueLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	category := r.URL.Query().Get("category")

	queue, err := h.reviewService.BuildQueue(r.Context(), userID, category, limit)
	if err != nil {
		status, msg := statusAndMessage(err)
		shared.RespondWithErrorAndLog(w, r, status, msg, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, queue)
}

func toReviewStateResponse(state *domain.ReviewState) *ReviewStateResponse {
	return &ReviewStateResponse{
		TermID:         state.TermID,
		EaseFactor:     state.EaseFactor,
		IntervalDays:   state.IntervalDays,
		Repetitions:    state.Repetitions,
		NextReviewAt:   state.NextReviewAt,
		TotalReviews:   state.TotalReviews,
		CorrectReviews: state.CorrectReviews,
	}
}
