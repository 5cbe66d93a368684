package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/config"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain/sm2"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/postgres"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/achievement"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/auth"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/progress"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/review"
)

// application bundles the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	tokenVerifier   auth.TokenVerifier
	reviewService   review.Service
	progressService progress.Service
}

// newApplication connects the database, applies migrations, and wires the
// store, service, and scheduler layers together.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, err
	}

	tokenVerifier, err := auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	stores := progress.Stores{
		Terms:        postgres.NewPostgresTermStore(db),
		States:       postgres.NewPostgresReviewStateStore(db),
		Events:       postgres.NewPostgresPracticeEventStore(db),
		Daily:        postgres.NewPostgresDailyProgressStore(db),
		Streaks:      postgres.NewPostgresStreakStore(db),
		Achievements: postgres.NewPostgresAchievementStore(db),
		Users:        postgres.NewPostgresUserStore(db),
	}

	scheduler := sm2.NewServiceWithParams(sm2.NewParams(sm2.ParamsConfig{
		FailEasePenalty: cfg.Learning.FailEasePenalty,
		MaxIntervalDays: cfg.Learning.MaxIntervalDays,
	}))

	evaluator := achievement.NewEvaluator(logger)
	recorder := progress.NewRecorder(evaluator, cfg.Learning, logger)

	reviewService := review.NewService(
		db, stores, scheduler, recorder,
		postgres.RunInTxWithRetry, cfg.Learning, logger)
	progressService := progress.NewService(
		db, stores, recorder,
		postgres.RunInTxWithRetry, cfg.Learning, logger)

	return &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		tokenVerifier:   tokenVerifier,
		reviewService:   reviewService,
		progressService: progressService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
		app.db = nil
	}
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database connection", "error", err)
	}
}
