package usecase

import (
	"context"

	"github.com/iho/coffre/internal/domain"
)

// VaultAccess checks a caller's right to act on a vault. A nil caller means
// authentication is disabled and every check passes.
type VaultAccess struct {
	vaultRepo VaultRepository
}

// NewVaultAccess creates a new VaultAccess.
func NewVaultAccess(vaultRepo VaultRepository) *VaultAccess {
	return &VaultAccess{vaultRepo: vaultRepo}
}

// CanView allows admins and members of the vault.
func (a *VaultAccess) CanView(ctx context.Context, caller *domain.User, vaultID string) error {
	if caller == nil || caller.Role.SeesAllVaults() {
		return nil
	}
	if !caller.Role.IsValid() {
		return domain.ErrInsufficientRole
	}
	return a.requireMember(ctx, caller, vaultID)
}

// CanRecord allows admins and operators that are members of the vault.
func (a *VaultAccess) CanRecord(ctx context.Context, caller *domain.User, vaultID string) error {
	if caller == nil {
		return nil
	}
	if !caller.Role.CanRecord() {
		return domain.ErrInsufficientRole
	}
	if caller.Role.SeesAllVaults() {
		return nil
	}
	return a.requireMember(ctx, caller, vaultID)
}

// RequireRole checks a role predicate without any vault context.
func (a *VaultAccess) RequireRole(caller *domain.User, allowed func(domain.Role) bool) error {
	if caller == nil || allowed(caller.Role) {
		return nil
	}
	return domain.ErrInsufficientRole
}

func (a *VaultAccess) requireMember(ctx context.Context, caller *domain.User, vaultID string) error {
	ok, err := a.vaultRepo.IsMember(ctx, vaultID, caller.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotVaultMember
	}
	return nil
}

func callerID(caller *domain.User) string {
	if caller == nil {
		return ""
	}
	return caller.ID
}
