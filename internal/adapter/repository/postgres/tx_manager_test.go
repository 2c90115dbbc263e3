package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

var snapshotTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func TestTxManagerLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		expect func(pgxmock.PgxPoolIface)
		finish func(context.Context, usecase.Transaction) error
	}{
		{
			name:   "commit",
			expect: func(p pgxmock.PgxPoolIface) { p.ExpectCommit() },
			finish: func(ctx context.Context, tx usecase.Transaction) error { return tx.Commit(ctx) },
		},
		{
			name:   "rollback",
			expect: func(p pgxmock.PgxPoolIface) { p.ExpectRollback() },
			finish: func(ctx context.Context, tx usecase.Transaction) error { return tx.Rollback(ctx) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectBegin()
			tt.expect(mockPool)

			tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := tx.(*Tx); !ok {
				t.Fatalf("expected *Tx, got %T", tx)
			}

			if err := tt.finish(context.Background(), tx); err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	beginErr := errors.New("too many connections")
	mockPool.ExpectBegin().WillReturnError(beginErr)

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func TestTxQueriesRunInsideTransaction(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO movements").
		WithArgs("m1", "v1", "EXIT", pgxmock.AnyArg(), "Payout", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectRollback()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = newMovementRepository(mockPool).Create(ctx, tx, &domain.Movement{
		ID:          "m1",
		VaultID:     "v1",
		Type:        domain.MovementTypeExit,
		Amount:      decimal.RequireFromString("80.25"),
		Description: "Payout",
		CreatedBy:   "u1",
		CreatedAt:   testTime,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestLedgerStoreReadSnapshot(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(snapshotTxOptions)
	mockPool.ExpectQuery("FROM inventories").
		WithArgs("v1").
		WillReturnError(pgx.ErrNoRows)
	mockPool.ExpectQuery("FROM movements").
		WithArgs("v1", []string{"ENTRY", "EXIT"}, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"type", "amount"}).AddRow("ENTRY", "12.34"))
	mockPool.ExpectCommit()

	store := newLedgerStore(mockPool)
	engine := usecase.NewBalanceEngine(store, usecase.WithSnapshotReads(store))

	got, err := engine.ComputeBalance(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BalanceCents != 1234 {
		t.Fatalf("expected 1234 cents, got %d", got.BalanceCents)
	}

	assertExpectations(t, mockPool)
}

func TestLedgerStoreReadSnapshotRollsBackOnError(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(snapshotTxOptions)
	mockPool.ExpectRollback()

	fnErr := errors.New("read failed")
	store := newLedgerStore(mockPool)
	err := store.ReadSnapshot(context.Background(), func(ctx context.Context, _ usecase.LedgerStore) error {
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("expected fn error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestLedgerStoreReadSnapshotBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	beginErr := errors.New("connection reset")
	mockPool.ExpectBeginTx(snapshotTxOptions).WillReturnError(beginErr)

	store := newLedgerStore(mockPool)
	err := store.ReadSnapshot(context.Background(), func(ctx context.Context, _ usecase.LedgerStore) error {
		t.Fatalf("fn must not run without a transaction")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
