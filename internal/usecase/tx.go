package usecase

import "context"

// LedgerOp identifies the write a transaction performs. It travels in the
// context so storage adapters can attach it to their logs.
type LedgerOp struct {
	Name    string
	VaultID string
}

type ledgerOpKey struct{}

// WithLedgerOp returns a context carrying op.
func WithLedgerOp(ctx context.Context, op LedgerOp) context.Context {
	return context.WithValue(ctx, ledgerOpKey{}, op)
}

// LedgerOpFromContext returns the operation stored by WithLedgerOp.
func LedgerOpFromContext(ctx context.Context) (LedgerOp, bool) {
	op, ok := ctx.Value(ledgerOpKey{}).(LedgerOp)
	return op, ok
}

// runInTx runs fn inside a transaction, retrying the whole unit on transient
// conflicts when a retrier is configured.
func runInTx(ctx context.Context, op LedgerOp, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	ctx = WithLedgerOp(ctx, op)

	attempt := func() error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := fn(ctx, tx); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	if retrier == nil {
		return attempt()
	}

	return retrier.Retry(ctx, attempt)
}
