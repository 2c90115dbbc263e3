package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iho/coffre/internal/adapter/repository/memory"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
	"github.com/iho/coffre/internal/usecase/mocks"
)

var (
	admin    = &domain.User{ID: "u-admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	operator = &domain.User{ID: "u-op", Email: "op@example.com", Role: domain.RoleOperator}
	viewer   = &domain.User{ID: "u-view", Email: "view@example.com", Role: domain.RoleViewer}
	outsider = &domain.User{ID: "u-out", Email: "out@example.com", Role: domain.RoleOperator}
)

type testEnv struct {
	store     *memory.Store
	clock     *mocks.FakeClock
	retrier   *mocks.MockRetrier
	cache     *usecase.BalanceCache
	balances  *usecase.BalanceUseCase
	vaults    *usecase.VaultUseCase
	movements *usecase.MovementUseCase
	inventory *usecase.InventoryUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clock := mocks.NewFakeClock(t0)
	idGen := mocks.NewMockIDGenerator()
	retrier := &mocks.MockRetrier{Attempts: 1}
	access := usecase.NewVaultAccess(store)
	cache := usecase.NewBalanceCache(usecase.WithClock(clock))

	return &testEnv{
		store:     store,
		clock:     clock,
		retrier:   retrier,
		cache:     cache,
		balances:  usecase.NewBalanceUseCase(usecase.NewBalanceEngine(store), cache, access),
		vaults:    usecase.NewVaultUseCase(store, retrier, store, store.AuditRepository(), access, idGen),
		movements: usecase.NewMovementUseCase(store, retrier, store, store.MovementRepository(), store.AuditRepository(), access, idGen, clock),
		inventory: usecase.NewInventoryUseCase(store, retrier, store, store.InventoryRepository(), store.AuditRepository(), access, idGen, clock),
	}
}

// vault creates a vault whose members are the operator and the viewer.
func (e *testEnv) vault(t *testing.T) *domain.Vault {
	t.Helper()
	v, err := e.vaults.CreateVault(context.Background(), admin, usecase.CreateVaultInput{
		Name:      "Main safe",
		MemberIDs: []string{operator.ID, viewer.ID},
	})
	require.NoError(t, err)
	return v
}
