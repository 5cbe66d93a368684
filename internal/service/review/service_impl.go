package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain/sm2"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/progress"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// Verify interface compliance at compile time.
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db        *sql.DB
	stores    progress.Stores
	scheduler sm2.Service
	recorder  *progress.Recorder
	runTx     store.TxRunner
	cfg       config.LearningConfig
	logger    *slog.Logger
}

// NewService creates a review Service.
func NewService(
	db *sql.DB,
	stores progress.Stores,
	scheduler sm2.Service,
	recorder *progress.Recorder,
	runTx store.TxRunner,
	cfg config.LearningConfig,
	log *slog.Logger,
) Service {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if runTx == nil {
		panic("runTx cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &serviceImpl{
		db:        db,
		stores:    stores,
		scheduler: scheduler,
		recorder:  recorder,
		runTx:     runTx,
		cfg:       cfg,
		logger:    log.With(slog.String("component", "review_service")),
	}
}

// SubmitReview implements Service.SubmitReview.
func (s *serviceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	sub Submission,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if sub.EventID == uuid.Nil {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}
	if sub.Quality < 0 || sub.Quality > 5 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuality, sub.Quality)
	}
	if sub.TimeSpentSeconds < 0 {
		return nil, fmt.Errorf("%w: time spent cannot be negative", domain.ErrValidation)
	}

	now := time.Now().UTC()
	xp := sm2.XPForQuality(sub.Quality)

	var result *Result
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txs := s.stores.WithTx(tx)

		user, err := txs.Users.Get(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := txs.Terms.GetByID(ctx, sub.TermID); err != nil {
			if errors.Is(err, store.ErrTermNotFound) {
				return ErrTermNotFound
			}
			return err
		}

		// Lock the scheduling row so concurrent submissions for the same
		// term are serialized. First exposure has no row yet; the new one
		// is private to this transaction until commit.
		isNew := false
		state, err := txs.States.GetForUpdate(ctx, userID, sub.TermID)
		if errors.Is(err, store.ErrReviewStateNotFound) {
			isNew = true
			state, err = domain.NewReviewState(userID, sub.TermID, now)
		}
		if err != nil {
			return err
		}

		newState, err := s.scheduler.Apply(state, sub.Quality, now)
		if err != nil {
			return err
		}

		event := &domain.PracticeEvent{
			EventID:          sub.EventID,
			UserID:           userID,
			Modality:         domain.ModalityVocab,
			TermID:           sub.TermID,
			Quality:          sub.Quality,
			TimeSpentSeconds: sub.TimeSpentSeconds,
			XPEarned:         xp,
			OccurredAt:       now,
		}
		delta := store.DailyDelta{
			VocabReviewed:   1,
			PracticeMinutes: sub.TimeSpentSeconds / 60,
			XPEarned:        xp,
		}

		persistState := func(ctx context.Context) error {
			if isNew {
				return txs.States.Create(ctx, newState)
			}
			return txs.States.Update(ctx, newState)
		}

		outcome, applied, err := s.recorder.Apply(ctx, txs, user, event, delta, persistState)
		if err != nil {
			return err
		}

		if !applied {
			// Replay: the original submission already advanced the state.
			stored, err := txs.Events.Get(ctx, sub.EventID)
			if err != nil {
				return fmt.Errorf("failed to read replayed event: %w", err)
			}
			committed := state
			if isNew {
				committed = nil
			}
			result = &Result{
				State:    committed,
				XPEarned: stored.XPEarned,
				Replayed: true,
			}
			return nil
		}

		result = &Result{
			State:           newState,
			XPEarned:        xp,
			StreakChange:    outcome.StreakChange,
			NewAchievements: outcome.NewAchievements,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) ||
			errors.Is(err, store.ErrNotFound) ||
			errors.Is(err, ErrTermNotFound) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("user_id", userID.String()),
			slog.String("term_id", sub.TermID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	log.Debug("processed review",
		slog.String("user_id", userID.String()),
		slog.String("term_id", sub.TermID.String()),
		slog.Int("quality", sub.Quality),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

// BuildQueue implements Service.BuildQueue.
func (s *serviceImpl) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	category string,
	limit int,
) (*Queue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	now := time.Now().UTC()

	due, err := s.stores.States.ListDue(ctx, userID, now, category, limit)
	if err != nil {
		log.Error("failed to list due terms",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build review queue: %w", err)
	}

	queue := &Queue{DueCount: len(due)}
	for _, entry := range due {
		queue.Items = append(queue.Items, QueueItem{
			Term:  entry.Term,
			State: entry.State,
		})
	}

	// Backfill with new terms, bounded by both the remaining room and the
	// per-session introduction cap.
	newCap := limit - len(due)
	if newCap > s.cfg.NewItemSessionCap {
		newCap = s.cfg.NewItemSessionCap
	}
	if newCap > 0 {
		fresh, err := s.stores.Terms.ListUnreviewed(ctx, userID, category, newCap)
		if err != nil {
			log.Error("failed to list unreviewed terms",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to build review queue: %w", err)
		}
		for _, term := range fresh {
			queue.Items = append(queue.Items, QueueItem{Term: term, IsNew: true})
		}
		queue.NewCount = len(fresh)
	}

	log.Debug("built review queue",
		slog.String("user_id", userID.String()),
		slog.Int("due", queue.DueCount),
		slog.Int("new", queue.NewCount))
	return queue, nil
}
