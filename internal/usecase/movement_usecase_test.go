package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coffre/internal/adapter/repository/memory"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
	"github.com/iho/coffre/internal/usecase/mocks"
)

func TestMovementUseCase_RecordMovement(t *testing.T) {
	tests := []struct {
		name       string
		caller     *domain.User
		input      func(vaultID string) usecase.RecordMovementInput
		wantErr    error
		wantAmount string
	}{
		{
			name:   "operator records entry",
			caller: operator,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: domain.MovementTypeEntry, Amount: amount("250.50"), Description: "Sales"}
			},
			wantAmount: "250.5",
		},
		{
			name:   "amount rounded to cents at ingestion",
			caller: admin,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: domain.MovementTypeExit, Amount: amount("50.005")}
			},
			wantAmount: "50.01",
		},
		{
			name:   "viewer cannot record",
			caller: viewer,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: domain.MovementTypeEntry, Amount: amount("1")}
			},
			wantErr: domain.ErrInsufficientRole,
		},
		{
			name:   "non member cannot record",
			caller: outsider,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: domain.MovementTypeEntry, Amount: amount("1")}
			},
			wantErr: domain.ErrNotVaultMember,
		},
		{
			name:   "unknown type",
			caller: operator,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: "TRANSFER", Amount: amount("1")}
			},
			wantErr: domain.ErrInvalidMovementType,
		},
		{
			name:   "zero after rounding",
			caller: operator,
			input: func(id string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: id, Type: domain.MovementTypeEntry, Amount: amount("0.004")}
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:   "unknown vault",
			caller: admin,
			input: func(string) usecase.RecordMovementInput {
				return usecase.RecordMovementInput{VaultID: "missing", Type: domain.MovementTypeEntry, Amount: amount("1")}
			},
			wantErr: domain.ErrVaultNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			v := env.vault(t)

			m, err := env.movements.RecordMovement(ctx, tt.caller, tt.input(v.ID))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, m.Amount.String())
			assert.Equal(t, tt.caller.ID, m.CreatedBy)
			assert.True(t, m.CreatedAt.Equal(t0))

			logs, err := env.store.AuditRepository().ListByResource(ctx, domain.ResourceTypeMovement, m.ID)
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, domain.AuditActionMovementCreate, logs[0].Action)
		})
	}
}

func TestMovementUseCase_DeleteMovement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vault(t)

	m, err := env.movements.RecordMovement(ctx, operator, usecase.RecordMovementInput{VaultID: v.ID, Type: domain.MovementTypeEntry, Amount: amount("9999.99")})
	require.NoError(t, err)

	_, err = env.movements.DeleteMovement(ctx, operator, v.ID, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = env.movements.DeleteMovement(ctx, admin, "other-vault", m.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	env.clock.Advance(time.Hour)
	deleted, err := env.movements.DeleteMovement(ctx, admin, v.ID, m.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)
	assert.True(t, deleted.DeletedAt.Equal(t0.Add(time.Hour)))

	_, err = env.movements.DeleteMovement(ctx, admin, v.ID, m.ID)
	assert.ErrorIs(t, err, domain.ErrMovementAlreadyDeleted)

	live, err := env.movements.ListMovements(ctx, viewer, usecase.ListMovementsInput{VaultID: v.ID})
	require.NoError(t, err)
	assert.Empty(t, live)

	all, err := env.movements.ListMovements(ctx, viewer, usecase.ListMovementsInput{VaultID: v.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted())

	balance, err := env.balances.GetBalance(ctx, viewer, v.ID, true)
	require.NoError(t, err)
	assert.Zero(t, balance.BalanceCents)

	logs, err := env.store.AuditRepository().ListByResource(ctx, domain.ResourceTypeMovement, m.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.AuditActionMovementDelete, logs[1].Action)
	assert.NotNil(t, logs[1].BeforeState)
}

func TestMovementUseCase_ListMovements_Access(t *testing.T) {
	env := newTestEnv(t)
	v := env.vault(t)

	_, err := env.movements.ListMovements(context.Background(), outsider, usecase.ListMovementsInput{VaultID: v.ID})
	assert.ErrorIs(t, err, domain.ErrNotVaultMember)
}

func TestMovementUseCase_RecordMovement_RollsBackOnAuditFailure(t *testing.T) {
	store := memory.NewStore()
	clock := mocks.NewFakeClock(t0)
	idGen := mocks.NewMockIDGenerator()
	access := usecase.NewVaultAccess(store)
	errAudit := errors.New("audit unavailable")

	vaults := usecase.NewVaultUseCase(store, nil, store, store.AuditRepository(), access, idGen)
	v, err := vaults.CreateVault(context.Background(), nil, usecase.CreateVaultInput{Name: "Main"})
	require.NoError(t, err)

	retrier := &mocks.MockRetrier{Attempts: 3}
	movements := usecase.NewMovementUseCase(store, retrier, store, store.MovementRepository(), failingAudit{err: errAudit}, access, idGen, clock)

	_, err = movements.RecordMovement(context.Background(), nil, usecase.RecordMovementInput{VaultID: v.ID, Type: domain.MovementTypeEntry, Amount: amount("10")})
	assert.ErrorIs(t, err, errAudit)
	assert.Equal(t, 3, retrier.Calls)

	list, err := store.MovementRepository().ListByVault(context.Background(), v.ID, true, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingAudit struct {
	err error
}

func (f failingAudit) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return f.err
}

func (f failingAudit) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestMovementUseCase_WritesCarryLedgerOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vault(t)

	m, err := env.movements.RecordMovement(ctx, operator, usecase.RecordMovementInput{
		VaultID: v.ID, Type: domain.MovementTypeEntry, Amount: amount("10"),
	})
	require.NoError(t, err)

	_, err = env.movements.DeleteMovement(ctx, admin, v.ID, m.ID)
	require.NoError(t, err)

	assert.Equal(t, []usecase.LedgerOp{
		{Name: "create_vault", VaultID: v.ID},
		{Name: "record_movement", VaultID: v.ID},
		{Name: "delete_movement", VaultID: v.ID},
	}, env.retrier.Ops)
}

func TestMovementUseCase_MovementAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vault(t)

	m, err := env.movements.RecordMovement(ctx, operator, usecase.RecordMovementInput{
		VaultID: v.ID, Type: domain.MovementTypeExit, Amount: amount("80.25"),
	})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.movements.DeleteMovement(ctx, admin, v.ID, m.ID)
	require.NoError(t, err)

	trail, err := env.movements.MovementAudit(ctx, admin, v.ID, m.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, domain.AuditActionMovementCreate, trail[0].Action)
	assert.Equal(t, domain.AuditActionMovementDelete, trail[1].Action)
	assert.Equal(t, operator.ID, trail[0].UserID)
	assert.Equal(t, admin.ID, trail[1].UserID)

	_, err = env.movements.MovementAudit(ctx, operator, v.ID, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = env.movements.MovementAudit(ctx, admin, "other-vault", m.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	_, err = env.movements.MovementAudit(ctx, admin, v.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	// Authentication disabled.
	trail, err = env.movements.MovementAudit(ctx, nil, v.ID, m.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}
