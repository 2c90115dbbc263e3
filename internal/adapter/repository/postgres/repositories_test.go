package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

func beginTx(t *testing.T, mockPool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	mockPool.ExpectBegin()
	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return tx
}

func TestVaultRepositoryCreateAndAddMember(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("INSERT INTO vaults").
		WithArgs("v1", "Main safe", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("INSERT INTO vault_members").
		WithArgs("v1", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	repo := newVaultRepository(mockPool)
	ctx := context.Background()

	if err := repo.Create(ctx, tx, &domain.Vault{ID: "v1", Name: "Main safe", CreatedAt: testTime, UpdatedAt: testTime}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.AddMember(ctx, tx, &domain.VaultMember{VaultID: "v1", UserID: "u1", CreatedAt: testTime}); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestVaultRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM vaults WHERE id").
		WithArgs("v1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("v1", "Main safe", testTime, testTime))
	mockPool.ExpectQuery("FROM vaults WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newVaultRepository(mockPool)

	v, err := repo.GetByID(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "Main safe" || !v.CreatedAt.Equal(testTime) {
		t.Fatalf("unexpected vault: %+v", v)
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrVaultNotFound) {
		t.Fatalf("expected ErrVaultNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestVaultRepositoryMembership(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT EXISTS").
		WithArgs("v1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mockPool.ExpectQuery("JOIN vault_members").
		WithArgs("u1", int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("v1", "Main safe", testTime, testTime))

	repo := newVaultRepository(mockPool)

	ok, err := repo.IsMember(context.Background(), "v1", "u1")
	if err != nil || !ok {
		t.Fatalf("expected membership, got ok=%v err=%v", ok, err)
	}

	vaults, err := repo.ListByMember(context.Background(), "u1", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vaults) != 1 || vaults[0].ID != "v1" {
		t.Fatalf("unexpected vaults: %+v", vaults)
	}

	assertExpectations(t, mockPool)
}

func TestMovementRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("INSERT INTO movements").
		WithArgs("m1", "v1", "ENTRY", pgxmock.AnyArg(), "Sales", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newMovementRepository(mockPool)
	err := repo.Create(context.Background(), tx, &domain.Movement{
		ID:          "m1",
		VaultID:     "v1",
		Type:        domain.MovementTypeEntry,
		Amount:      decimal.RequireFromString("250.50"),
		Description: "Sales",
		CreatedBy:   "u1",
		CreatedAt:   testTime,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestMovementRepositoryGetByIDForUpdate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)
	deletedAt := testTime.Add(time.Hour)

	columns := []string{"id", "vault_id", "type", "amount", "description", "created_by", "created_at", "deleted_at"}
	mockPool.ExpectQuery("FOR UPDATE").
		WithArgs("v1", "m1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("m1", "v1", "EXIT", "80.25", "", "u1", testTime, deletedAt))
	mockPool.ExpectQuery("FOR UPDATE").
		WithArgs("v1", "missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newMovementRepository(mockPool)

	m, err := repo.GetByIDForUpdate(context.Background(), tx, "v1", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Type != domain.MovementTypeExit || !m.IsDeleted() || !m.DeletedAt.Equal(deletedAt) {
		t.Fatalf("unexpected movement: %+v", m)
	}

	if _, err := repo.GetByIDForUpdate(context.Background(), tx, "v1", "missing"); !errors.Is(err, domain.ErrMovementNotFound) {
		t.Fatalf("expected ErrMovementNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestMovementRepositorySoftDelete(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("UPDATE movements SET deleted_at").
		WithArgs("m1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectExec("UPDATE movements SET deleted_at").
		WithArgs("m1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := newMovementRepository(mockPool)

	if err := repo.SoftDelete(context.Background(), tx, "m1", testTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SoftDelete(context.Background(), tx, "m1", testTime); !errors.Is(err, domain.ErrMovementAlreadyDeleted) {
		t.Fatalf("expected ErrMovementAlreadyDeleted, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestMovementRepositoryListByVault(t *testing.T) {
	mockPool := newMockPool(t)
	columns := []string{"id", "vault_id", "type", "amount", "description", "created_by", "created_at", "deleted_at"}
	mockPool.ExpectQuery("FROM movements").
		WithArgs("v1", false, int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("m2", "v1", "EXIT", "80.25", "", "u1", testTime.Add(time.Minute), optionalTimestamptz(nil)).
			AddRow("m1", "v1", "ENTRY", "250.50", "", "u1", testTime, optionalTimestamptz(nil)))

	repo := newMovementRepository(mockPool)
	movements, err := repo.ListByVault(context.Background(), "v1", false, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movements) != 2 || movements[0].ID != "m2" || movements[0].IsDeleted() {
		t.Fatalf("unexpected movements: %+v", movements)
	}

	assertExpectations(t, mockPool)
}

func TestInventoryRepositoryCreateSetsSeq(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectQuery("INSERT INTO inventories").
		WithArgs("i1", "v1", pgxmock.AnyArg(), "count", "u1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	repo := newInventoryRepository(mockPool)
	inv := &domain.Inventory{
		ID:          "i1",
		VaultID:     "v1",
		TotalAmount: decimal.RequireFromString("1000.00"),
		Notes:       "count",
		CreatedBy:   "u1",
		CreatedAt:   testTime,
	}
	if err := repo.Create(context.Background(), tx, inv); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.Seq != 42 {
		t.Fatalf("expected seq 42, got %d", inv.Seq)
	}

	assertExpectations(t, mockPool)
}

func TestInventoryRepositoryListByVault(t *testing.T) {
	mockPool := newMockPool(t)
	columns := []string{"id", "seq", "vault_id", "total_amount", "notes", "created_by", "created_at"}
	mockPool.ExpectQuery("FROM inventories").
		WithArgs("v1", int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("i2", int64(2), "v1", "300.00", "", "u1", testTime).
			AddRow("i1", int64(1), "v1", "100.00", "", "u1", testTime))

	repo := newInventoryRepository(mockPool)
	inventories, err := repo.ListByVault(context.Background(), "v1", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inventories) != 2 || inventories[0].Seq != 2 || !inventories[0].TotalAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected inventories: %+v", inventories)
	}

	assertExpectations(t, mockPool)
}

func TestAuditRepositoryCreateTx(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("INSERT INTO audit_logs").
		WithArgs(pgxmock.AnyArg(), "u1", "movement.create", "movement", "m1", "v1",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newAuditRepository(mockPool)
	log := &domain.AuditLog{
		UserID:       "u1",
		Action:       domain.AuditActionMovementCreate,
		ResourceType: domain.ResourceTypeMovement,
		ResourceID:   "m1",
		VaultID:      "v1",
		AfterState:   domain.JSON{"amount": "250.5"},
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    testTime,
	}
	if err := repo.CreateTx(context.Background(), tx, log); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if log.ID == "" {
		t.Fatalf("expected generated audit id")
	}

	assertExpectations(t, mockPool)
}

func TestAuditRepositoryListByResource(t *testing.T) {
	mockPool := newMockPool(t)
	columns := []string{"id", "user_id", "action", "resource_type", "resource_id", "vault_id",
		"before_state", "after_state", "status", "error_message", "created_at"}
	mockPool.ExpectQuery("FROM audit_logs").
		WithArgs("movement", "m1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("a1", "u1", "movement.delete", "movement", "m1", "v1",
				[]byte(`{"deleted":false}`), []byte(`{"deleted":true}`), "success", "", testTime))

	repo := newAuditRepository(mockPool)
	logs, err := repo.ListByResource(context.Background(), domain.ResourceTypeMovement, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != domain.AuditActionMovementDelete {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if logs[0].AfterState["deleted"] != true {
		t.Fatalf("expected after state to be decoded, got %v", logs[0].AfterState)
	}

	assertExpectations(t, mockPool)
}
