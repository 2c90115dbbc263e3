package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/coffre/internal/usecase"
)

// SQLSTATE codes retried by Retrier.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier for ledger writes with exponential backoff.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a Retrier allowing three extra attempts within ten seconds.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}
}

// Retry runs operation until it succeeds, fails with a non-transient error or
// the retry budget is spent. The ledger operation found in ctx, if any, is
// attached to every log line.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval
	policy.MaxElapsedTime = r.maxElapsedTime

	logger := r.opLogger(ctx)
	attempt := 0

	return backoff.RetryNotify(func() error {
		attempt++

		err := operation()
		if err == nil {
			return nil
		}

		code, transient := transientCode(err)
		if !transient {
			return backoff.Permanent(err)
		}

		if attempt > r.maxRetries {
			logger.Error().
				Err(err).
				Str("sqlstate", code).
				Int("attempts", attempt).
				Msg("ledger write conflict persisted, giving up")
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		code, _ := transientCode(err)
		logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("ledger write conflict, retrying")
	})
}

func (r *Retrier) opLogger(ctx context.Context) zerolog.Logger {
	op, ok := usecase.LedgerOpFromContext(ctx)
	if !ok {
		return r.logger
	}

	lc := r.logger.With().Str("operation", op.Name)
	if op.VaultID != "" {
		lc = lc.Str("vault_id", op.VaultID)
	}
	return lc.Logger()
}

// transientCode reports the SQLSTATE of err and whether it is a deadlock or
// serialization failure.
func transientCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return pgErr.Code, true
	}
	return pgErr.Code, false
}
