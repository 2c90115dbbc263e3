package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long a computed balance is served from cache.
	DefaultBalanceCacheTTL = 5 * time.Minute

	// DefaultBalanceComputeTimeout bounds a balance computation shared by
	// several waiting callers.
	DefaultBalanceComputeTimeout = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessing is stored under a claimed idempotency key until
	// the first request completes.
	IdempotencyProcessing = "processing"
)
