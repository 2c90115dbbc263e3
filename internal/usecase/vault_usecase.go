package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/coffre/internal/domain"
)

// VaultUseCase handles vault business logic.
type VaultUseCase struct {
	txManager TransactionManager
	retrier   Retrier
	vaultRepo VaultRepository
	auditRepo AuditRepository
	access    *VaultAccess
	idGen     IDGenerator
}

// NewVaultUseCase creates a new VaultUseCase.
func NewVaultUseCase(
	txManager TransactionManager,
	retrier Retrier,
	vaultRepo VaultRepository,
	auditRepo AuditRepository,
	access *VaultAccess,
	idGen IDGenerator,
) *VaultUseCase {
	return &VaultUseCase{
		txManager: txManager,
		retrier:   retrier,
		vaultRepo: vaultRepo,
		auditRepo: auditRepo,
		access:    access,
		idGen:     idGen,
	}
}

// CreateVaultInput represents input for creating a vault.
type CreateVaultInput struct {
	Name string
	// MemberIDs are added as members in the same transaction.
	MemberIDs []string
}

// CreateVault creates a new vault.
func (uc *VaultUseCase) CreateVault(ctx context.Context, caller *domain.User, input CreateVaultInput) (*domain.Vault, error) {
	if err := uc.access.RequireRole(caller, domain.Role.CanManageVaults); err != nil {
		return nil, err
	}

	if err := domain.ValidateVaultName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	vault := &domain.Vault{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := runInTx(ctx, LedgerOp{Name: "create_vault", VaultID: vault.ID}, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.vaultRepo.Create(ctx, tx, vault); err != nil {
			return err
		}

		for _, userID := range input.MemberIDs {
			member := &domain.VaultMember{VaultID: vault.ID, UserID: userID, CreatedAt: now}
			if err := uc.vaultRepo.AddMember(ctx, tx, member); err != nil {
				return err
			}
		}

		return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       callerID(caller),
			Action:       domain.AuditActionVaultCreate,
			ResourceType: domain.ResourceTypeVault,
			ResourceID:   vault.ID,
			VaultID:      vault.ID,
			AfterState:   domain.MarshalState(vault),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	return vault, nil
}

// GetVault retrieves a vault by ID.
func (uc *VaultUseCase) GetVault(ctx context.Context, caller *domain.User, id string) (*domain.Vault, error) {
	if err := uc.access.CanView(ctx, caller, id); err != nil {
		return nil, err
	}
	return uc.vaultRepo.GetByID(ctx, id)
}

// ListVaultsInput represents input for listing vaults.
type ListVaultsInput struct {
	Limit  int
	Offset int
}

// ListVaults lists every vault for admins and member vaults for everyone else.
func (uc *VaultUseCase) ListVaults(ctx context.Context, caller *domain.User, input ListVaultsInput) ([]*domain.Vault, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	if caller == nil || caller.Role.SeesAllVaults() {
		return uc.vaultRepo.List(ctx, limit, offset)
	}

	return uc.vaultRepo.ListByMember(ctx, caller.ID, limit, offset)
}

// AddMember grants a user access to a vault.
func (uc *VaultUseCase) AddMember(ctx context.Context, caller *domain.User, vaultID, userID string) (*domain.VaultMember, error) {
	if err := uc.access.RequireRole(caller, domain.Role.CanManageVaults); err != nil {
		return nil, err
	}

	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUserID
	}

	if _, err := uc.vaultRepo.GetByID(ctx, vaultID); err != nil {
		return nil, err
	}

	member := &domain.VaultMember{
		VaultID:   vaultID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	err := runInTx(ctx, LedgerOp{Name: "add_member", VaultID: vaultID}, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.vaultRepo.AddMember(ctx, tx, member); err != nil {
			return err
		}

		return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       callerID(caller),
			Action:       domain.AuditActionVaultAddMember,
			ResourceType: domain.ResourceTypeVault,
			ResourceID:   vaultID,
			VaultID:      vaultID,
			AfterState:   domain.JSON{"user_id": userID},
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    member.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}
