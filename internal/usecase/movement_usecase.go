package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
)

// MovementUseCase handles movement business logic.
//
// Recording or deleting a movement does not touch the balance cache: cached
// balances stay valid until their TTL runs out.
type MovementUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	vaultRepo    VaultRepository
	movementRepo MovementRepository
	auditRepo    AuditRepository
	access       *VaultAccess
	idGen        IDGenerator
	clock        Clock
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	retrier Retrier,
	vaultRepo VaultRepository,
	movementRepo MovementRepository,
	auditRepo AuditRepository,
	access *VaultAccess,
	idGen IDGenerator,
	clock Clock,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		retrier:      retrier,
		vaultRepo:    vaultRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		access:       access,
		idGen:        idGen,
		clock:        clock,
	}
}

// RecordMovementInput represents input for recording a movement.
type RecordMovementInput struct {
	VaultID     string
	Type        domain.MovementType
	Amount      decimal.Decimal
	Description string
}

// RecordMovement records an entry or exit. The amount is rounded to cents
// before validation and storage.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, caller *domain.User, input RecordMovementInput) (*domain.Movement, error) {
	if err := uc.access.CanRecord(ctx, caller, input.VaultID); err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidMovementType
	}

	amount := domain.RoundToMinorUnits(input.Amount)
	if err := domain.ValidateMovementAmount(amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	if _, err := uc.vaultRepo.GetByID(ctx, input.VaultID); err != nil {
		return nil, err
	}

	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		VaultID:     input.VaultID,
		Type:        input.Type,
		Amount:      amount,
		Description: input.Description,
		CreatedBy:   callerID(caller),
		CreatedAt:   uc.clock.Now(),
	}

	err := runInTx(ctx, LedgerOp{Name: "record_movement", VaultID: movement.VaultID}, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return err
		}

		return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       movement.CreatedBy,
			Action:       domain.AuditActionMovementCreate,
			ResourceType: domain.ResourceTypeMovement,
			ResourceID:   movement.ID,
			VaultID:      movement.VaultID,
			AfterState:   domain.MarshalState(movement),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    movement.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// ListMovementsInput represents input for listing movements.
type ListMovementsInput struct {
	VaultID        string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListMovements lists movements of a vault, newest first.
func (uc *MovementUseCase) ListMovements(ctx context.Context, caller *domain.User, input ListMovementsInput) ([]*domain.Movement, error) {
	if err := uc.access.CanView(ctx, caller, input.VaultID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.movementRepo.ListByVault(ctx, input.VaultID, input.IncludeDeleted, limit, offset)
}

// DeleteMovement soft-deletes a movement. The row is kept and stops counting
// toward the balance.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, caller *domain.User, vaultID, movementID string) (*domain.Movement, error) {
	if err := uc.access.RequireRole(caller, domain.Role.CanDelete); err != nil {
		return nil, err
	}

	var deleted *domain.Movement

	err := runInTx(ctx, LedgerOp{Name: "delete_movement", VaultID: vaultID}, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		movement, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, vaultID, movementID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(movement)

		now := uc.clock.Now()
		if err := movement.SoftDelete(now); err != nil {
			return err
		}

		if err := uc.movementRepo.SoftDelete(ctx, tx, movement.ID, now); err != nil {
			return err
		}

		deleted = movement

		return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       callerID(caller),
			Action:       domain.AuditActionMovementDelete,
			ResourceType: domain.ResourceTypeMovement,
			ResourceID:   movement.ID,
			VaultID:      movement.VaultID,
			BeforeState:  before,
			AfterState:   domain.MarshalState(movement),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// MovementAudit returns the audit trail of a movement, oldest first. A
// movement with no trail in the vault is reported as not found.
func (uc *MovementUseCase) MovementAudit(ctx context.Context, caller *domain.User, vaultID, movementID string) ([]*domain.AuditLog, error) {
	if err := uc.access.RequireRole(caller, domain.Role.CanReadAudit); err != nil {
		return nil, err
	}

	logs, err := uc.auditRepo.ListByResource(ctx, domain.ResourceTypeMovement, movementID)
	if err != nil {
		return nil, err
	}

	trail := make([]*domain.AuditLog, 0, len(logs))
	for _, l := range logs {
		if l.VaultID == vaultID {
			trail = append(trail, l)
		}
	}
	if len(trail) == 0 {
		return nil, domain.ErrMovementNotFound
	}

	return trail, nil
}
