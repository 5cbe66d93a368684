package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/progress"
)

type mockProgressService struct {
	recordFn func(ctx context.Context, userID uuid.UUID, sub progress.SessionSubmission) (*progress.SessionResult, error)
	statsFn  func(ctx context.Context, userID uuid.UUID, start, end time.Time) (*progress.StatsReport, error)
}

func (m *mockProgressService) RecordSession(
	ctx context.Context,
	userID uuid.UUID,
	sub progress.SessionSubmission,
) (*progress.SessionResult, error) {
	return m.recordFn(ctx, userID, sub)
}

func (m *mockProgressService) GetStats(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) (*progress.StatsReport, error) {
	return m.statsFn(ctx, userID, start, end)
}

func TestRecordSessionHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &mockProgressService{
		recordFn: func(_ context.Context, gotUser uuid.UUID, sub progress.SessionSubmission) (*progress.SessionResult, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, domain.ModalityListening, sub.Modality)
			assert.Equal(t, 3, sub.ItemsCompleted)
			return &progress.SessionResult{
				XPEarned: 31,
				Daily:    &domain.DailyProgress{ListeningCompleted: 3},
				Streak:   &domain.Streak{CurrentStreak: 2},
			}, nil
		},
	}
	handler := NewProgressHandler(svc, testLogger())

	body, err := json.Marshal(map[string]interface{}{
		"event_id":           uuid.New(),
		"modality":           "listening",
		"items_completed":    3,
		"time_spent_seconds": 300,
	})
	require.NoError(t, err)

	req := authedRequest(http.MethodPost, "/api/practice/sessions", body, userID)
	rec := httptest.NewRecorder()
	handler.RecordSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp progress.SessionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 31, resp.XPEarned)
	require.NotNil(t, resp.Streak)
	assert.Equal(t, 2, resp.Streak.CurrentStreak)
}

func TestRecordSessionHandlerRejectsUnknownModality(t *testing.T) {
	t.Parallel()

	svc := &mockProgressService{
		recordFn: func(context.Context, uuid.UUID, progress.SessionSubmission) (*progress.SessionResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	handler := NewProgressHandler(svc, testLogger())

	body, err := json.Marshal(map[string]interface{}{
		"event_id": uuid.New(),
		"modality": "telepathy",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.RecordSession(rec, authedRequest(http.MethodPost, "/api/practice/sessions", body, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordSessionHandlerInvalidBody(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockProgressService{}, testLogger())

	rec := httptest.NewRecorder()
	handler.RecordSession(rec, authedRequest(
		http.MethodPost, "/api/practice/sessions", []byte("{not json"), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsHandlerParsesDateRange(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &mockProgressService{
		statsFn: func(_ context.Context, gotUser uuid.UUID, start, end time.Time) (*progress.StatsReport, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
			assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), end)
			return &progress.StatsReport{Start: start, End: end}, nil
		},
	}
	handler := NewProgressHandler(svc, testLogger())

	req := authedRequest(http.MethodGet,
		"/api/progress/stats?start=2026-08-01&end=2026-08-28", nil, userID)
	rec := httptest.NewRecorder()
	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetStatsHandlerDefaultsEmptyParamsToZeroTimes(t *testing.T) {
	t.Parallel()

	svc := &mockProgressService{
		statsFn: func(_ context.Context, _ uuid.UUID, start, end time.Time) (*progress.StatsReport, error) {
			assert.True(t, start.IsZero())
			assert.True(t, end.IsZero())
			return &progress.StatsReport{}, nil
		},
	}
	handler := NewProgressHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.GetStats(rec, authedRequest(http.MethodGet, "/api/progress/stats", nil, uuid.New()))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetStatsHandlerRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockProgressService{}, testLogger())

	rec := httptest.NewRecorder()
	handler.GetStats(rec, authedRequest(
		http.MethodGet, "/api/progress/stats?start=08-01-2026", nil, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsHandlerMapsInvalidRange(t *testing.T) {
	t.Parallel()

	svc := &mockProgressService{
		statsFn: func(context.Context, uuid.UUID, time.Time, time.Time) (*progress.StatsReport, error) {
			return nil, domain.ErrInvalidDateRange
		},
	}
	handler := NewProgressHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.GetStats(rec, authedRequest(
		http.MethodGet, "/api/progress/stats?start=2026-08-28&end=2026-08-01", nil, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
