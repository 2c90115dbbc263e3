package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/postgres/generated"
	"github.com/iho/coffre/internal/usecase"
)

// LedgerStore implements usecase.LedgerStore and usecase.LedgerSnapshotter.
type LedgerStore struct {
	pool    pgxPool
	queries *generated.Queries
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return newLedgerStore(pool)
}

func newLedgerStore(pool pgxPool) *LedgerStore {
	return &LedgerStore{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// FindLatestInventory returns the latest inventory of the vault. Inventories
// sharing a timestamp are ordered by their sequence number.
func (s *LedgerStore) FindLatestInventory(ctx context.Context, vaultID string) (*domain.InventorySnapshot, error) {
	return findLatestInventory(ctx, s.queries, vaultID)
}

// FindMovementsSince returns live movements created at or after since.
func (s *LedgerStore) FindMovementsSince(ctx context.Context, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error) {
	return findMovementsSince(ctx, s.queries, vaultID, since, types)
}

// ReadSnapshot runs fn inside a read-only repeatable read transaction so all
// reads observe the same committed state.
func (s *LedgerStore) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store usecase.LedgerStore) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, snapshotStore{queries: generated.New(tx)}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type snapshotStore struct {
	queries *generated.Queries
}

func (s snapshotStore) FindLatestInventory(ctx context.Context, vaultID string) (*domain.InventorySnapshot, error) {
	return findLatestInventory(ctx, s.queries, vaultID)
}

func (s snapshotStore) FindMovementsSince(ctx context.Context, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error) {
	return findMovementsSince(ctx, s.queries, vaultID, since, types)
}

func findLatestInventory(ctx context.Context, q *generated.Queries, vaultID string) (*domain.InventorySnapshot, error) {
	row, err := q.GetLatestInventory(ctx, vaultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest inventory: %w", err)
	}

	return &domain.InventorySnapshot{
		TotalAmount: numericToDecimal(row.TotalAmount),
		CreatedAt:   row.CreatedAt.Time,
	}, nil
}

func findMovementsSince(ctx context.Context, q *generated.Queries, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error) {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	rows, err := q.FindMovementsSince(ctx, generated.FindMovementsSinceParams{
		VaultID: vaultID,
		Types:   names,
		Since:   optionalTimestamptz(since),
	})
	if err != nil {
		return nil, fmt.Errorf("find movements: %w", err)
	}

	movements := make([]domain.MovementAmount, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, domain.MovementAmount{
			Type:   domain.MovementType(row.Type),
			Amount: numericToDecimal(row.Amount),
		})
	}

	return movements, nil
}
