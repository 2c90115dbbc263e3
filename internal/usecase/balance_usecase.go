package usecase

import (
	"context"

	"github.com/iho/coffre/internal/domain"
)

// BalanceComputer computes a vault balance.
type BalanceComputer interface {
	ComputeBalance(ctx context.Context, vaultID string) (*domain.BalanceInfo, error)
}

// BalanceUseCase serves vault balances through the cache.
type BalanceUseCase struct {
	engine BalanceComputer
	cache  *BalanceCache
	access *VaultAccess
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(engine BalanceComputer, cache *BalanceCache, access *VaultAccess) *BalanceUseCase {
	return &BalanceUseCase{
		engine: engine,
		cache:  cache,
		access: access,
	}
}

// GetBalance returns the balance of a vault. With fresh set, the cache is
// bypassed and refreshed so the caller sees its own latest writes.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, caller *domain.User, vaultID string, fresh bool) (*domain.BalanceInfo, error) {
	if err := uc.access.CanView(ctx, caller, vaultID); err != nil {
		return nil, err
	}

	compute := func(ctx context.Context) (*domain.BalanceInfo, error) {
		return uc.engine.ComputeBalance(ctx, vaultID)
	}

	if fresh {
		return uc.cache.Refresh(ctx, vaultID, compute)
	}

	return uc.cache.GetCachedBalance(ctx, vaultID, compute)
}
