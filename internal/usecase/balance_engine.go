package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coffre/internal/domain"
)

// BalanceEngine derives a vault balance from its latest inventory and the
// movements recorded since. It only reads from the store and keeps no state.
type BalanceEngine struct {
	store     LedgerStore
	snapshots LedgerSnapshotter
	observer  BalanceObserver
	logger    zerolog.Logger
}

// EngineOption configures a BalanceEngine.
type EngineOption func(*BalanceEngine)

// WithSnapshotReads runs the inventory and movement reads inside one snapshot.
func WithSnapshotReads(s LedgerSnapshotter) EngineOption {
	return func(e *BalanceEngine) { e.snapshots = s }
}

// WithEngineObserver records computation durations.
func WithEngineObserver(o BalanceObserver) EngineOption {
	return func(e *BalanceEngine) { e.observer = o }
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l zerolog.Logger) EngineOption {
	return func(e *BalanceEngine) { e.logger = l }
}

// NewBalanceEngine creates a new BalanceEngine.
func NewBalanceEngine(store LedgerStore, opts ...EngineOption) *BalanceEngine {
	e := &BalanceEngine{
		store:    store,
		observer: noopObserver{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeBalance returns the current balance of the vault. A vault without
// inventories or movements has a zero balance. Store errors are returned as is.
func (e *BalanceEngine) ComputeBalance(ctx context.Context, vaultID string) (*domain.BalanceInfo, error) {
	start := time.Now()

	var (
		info     *domain.BalanceInfo
		replayed int
	)

	compute := func(ctx context.Context, store LedgerStore) error {
		inventory, err := store.FindLatestInventory(ctx, vaultID)
		if err != nil {
			return err
		}

		var (
			since *time.Time
			cents int64
		)
		if inventory != nil {
			since = &inventory.CreatedAt
			cents = domain.ToMinorUnits(inventory.TotalAmount)
		}

		movements, err := store.FindMovementsSince(ctx, vaultID, since, domain.BalanceMovementTypes)
		if err != nil {
			return err
		}

		cents += SumMinorUnits(movements)
		info = domain.NewBalanceInfo(cents, inventory)
		replayed = len(movements)

		return nil
	}

	var err error
	if e.snapshots != nil {
		err = e.snapshots.ReadSnapshot(ctx, compute)
	} else {
		err = compute(ctx, e.store)
	}

	elapsed := time.Since(start)
	e.observer.ObserveBalanceComputation(elapsed, err)

	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("vault_id", vaultID).
		Int("movements", replayed).
		Int64("balance_cents", info.BalanceCents).
		Dur("duration", elapsed).
		Msg("balance computed")

	return info, nil
}

// SumMinorUnits adds entries and subtracts exits in integer cents.
// Movements of any other type are ignored.
func SumMinorUnits(movements []domain.MovementAmount) int64 {
	var total int64
	for _, m := range movements {
		if !m.Type.IsValid() {
			continue
		}
		total += m.SignedMinorUnits()
	}
	return total
}
