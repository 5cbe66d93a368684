package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/api/middleware"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/api/shared"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/progress"
)

// RecordSessionRequest is the body of POST /api/practice/sessions.
type RecordSessionRequest struct {
	EventID          uuid.UUID `json:"event_id"           validate:"required"`
	Modality         string    `json:"modality"           validate:"required,oneof=vocab listening speaking"`
	ItemsCompleted   int       `json:"items_completed"    validate:"gte=0"`
	TimeSpentSeconds int       `json:"time_spent_seconds" validate:"gte=0"`
}

// ProgressHandler handles practice session and stats HTTP requests.
type ProgressHandler struct {
	progressService progress.Service
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService progress.Service, log *slog.Logger) *ProgressHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		progressService: progressService,
		logger:          log.With(slog.String("component", "progress_handler")),
	}
}

// RecordSession handles POST /api/practice/sessions requests.
func (h *ProgressHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RecordSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.progressService.RecordSession(r.Context(), userID, progress.SessionSubmission{
		EventID:          req.EventID,
		Modality:         domain.Modality(req.Modality),
		ItemsCompleted:   req.ItemsCompleted,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		status, msg := statusAndMessage(err)
		shared.RespondWithErrorAndLog(w, r, status, msg, err)
		return
	}

	log.Debug("practice session recorded",
		slog.String("user_id", userID.String()),
		slog.String("modality", req.Modality),
		slog.Bool("replayed", result.Replayed))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetStats handles GET /api/progress/stats requests. The optional start and
// end query params are local calendar days in YYYY-MM-DD form.
func (h *ProgressHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	start, err := parseDateParam(r.URL.Query().Get("start"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("end"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	report, err := h.progressService.GetStats(r.Context(), userID, start, end)
	if err != nil {
		status, msg := statusAndMessage(err)
		shared.RespondWithErrorAndLog(w, r, status, msg, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}
