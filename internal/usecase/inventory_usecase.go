package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
)

// InventoryUseCase handles physical cash counts.
type InventoryUseCase struct {
	txManager     TransactionManager
	retrier       Retrier
	vaultRepo     VaultRepository
	inventoryRepo InventoryRepository
	auditRepo     AuditRepository
	access        *VaultAccess
	idGen         IDGenerator
	clock         Clock
}

// NewInventoryUseCase creates a new InventoryUseCase.
func NewInventoryUseCase(
	txManager TransactionManager,
	retrier Retrier,
	vaultRepo VaultRepository,
	inventoryRepo InventoryRepository,
	auditRepo AuditRepository,
	access *VaultAccess,
	idGen IDGenerator,
	clock Clock,
) *InventoryUseCase {
	return &InventoryUseCase{
		txManager:     txManager,
		retrier:       retrier,
		vaultRepo:     vaultRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		access:        access,
		idGen:         idGen,
		clock:         clock,
	}
}

// RecordInventoryInput represents input for recording an inventory.
type RecordInventoryInput struct {
	VaultID     string
	TotalAmount decimal.Decimal
	Notes       string
}

// RecordInventory stores a physical count. From then on the vault balance
// starts from this total.
func (uc *InventoryUseCase) RecordInventory(ctx context.Context, caller *domain.User, input RecordInventoryInput) (*domain.Inventory, error) {
	if err := uc.access.CanRecord(ctx, caller, input.VaultID); err != nil {
		return nil, err
	}

	total := domain.RoundToMinorUnits(input.TotalAmount)
	if err := domain.ValidateInventoryTotal(total); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Notes); err != nil {
		return nil, err
	}

	if _, err := uc.vaultRepo.GetByID(ctx, input.VaultID); err != nil {
		return nil, err
	}

	inventory := &domain.Inventory{
		ID:          uc.idGen.Generate(),
		VaultID:     input.VaultID,
		TotalAmount: total,
		Notes:       input.Notes,
		CreatedBy:   callerID(caller),
		CreatedAt:   uc.clock.Now(),
	}

	err := runInTx(ctx, LedgerOp{Name: "record_inventory", VaultID: inventory.VaultID}, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.inventoryRepo.Create(ctx, tx, inventory); err != nil {
			return err
		}

		return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       inventory.CreatedBy,
			Action:       domain.AuditActionInventoryCreate,
			ResourceType: domain.ResourceTypeInventory,
			ResourceID:   inventory.ID,
			VaultID:      inventory.VaultID,
			AfterState:   domain.MarshalState(inventory),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    inventory.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return inventory, nil
}

// ListInventoriesInput represents input for listing inventories.
type ListInventoriesInput struct {
	VaultID string
	Limit   int
	Offset  int
}

// ListInventories lists inventories of a vault, newest first.
func (uc *InventoryUseCase) ListInventories(ctx context.Context, caller *domain.User, input ListInventoriesInput) ([]*domain.Inventory, error) {
	if err := uc.access.CanView(ctx, caller, input.VaultID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.inventoryRepo.ListByVault(ctx, input.VaultID, limit, offset)
}
