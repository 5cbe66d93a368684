package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/platform/logger"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

const (
	conflictMaxAttempts = 3
	conflictBaseBackoff = 25 * time.Millisecond
)

// RunInTxWithRetry executes fn inside a transaction, retrying the whole
// transaction a bounded number of times when it loses a concurrency race
// (serialization failure or deadlock). Backoff between attempts is jittered
// so competing retries do not collide again in lockstep. When attempts are
// exhausted the error surfaces as store.ErrConflict; callers keyed by event
// id may safely retry the full operation.
func RunInTxWithRetry(ctx context.Context, db *sql.DB, fn store.TxFn) error {
	log := logger.FromContext(ctx)

	var err error
	for attempt := 1; attempt <= conflictMaxAttempts; attempt++ {
		err = store.RunInTransaction(ctx, db, fn)
		if err == nil || !IsRetryableConflict(err) {
			return err
		}

		log.Warn("transaction lost concurrency race",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < conflictMaxAttempts {
			backoff := time.Duration(attempt) * conflictBaseBackoff
			jitter := time.Duration(rand.Int63n(int64(conflictBaseBackoff)))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%w: %v", store.ErrConflict, err)
}
