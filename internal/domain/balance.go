package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceInfo is the derived balance of a vault. It is never persisted.
type BalanceInfo struct {
	Balance                  decimal.Decimal
	BalanceCents             int64
	LastInventoryDate        *time.Time
	LastInventoryAmount      decimal.Decimal
	LastInventoryAmountCents int64
}

// NewBalanceInfo builds a BalanceInfo from minor units and the reference inventory, if any.
func NewBalanceInfo(balanceCents int64, inventory *InventorySnapshot) *BalanceInfo {
	info := &BalanceInfo{
		Balance:             FromMinorUnits(balanceCents),
		BalanceCents:        NormalizeZero(balanceCents),
		LastInventoryAmount: decimal.Zero,
	}

	if inventory != nil {
		at := inventory.CreatedAt
		invCents := ToMinorUnits(inventory.TotalAmount)
		info.LastInventoryDate = &at
		info.LastInventoryAmountCents = invCents
		info.LastInventoryAmount = FromMinorUnits(invCents)
	}

	return info
}

// Clone returns a deep copy so cached values cannot be mutated by callers.
func (b *BalanceInfo) Clone() *BalanceInfo {
	if b == nil {
		return nil
	}
	c := *b
	if b.LastInventoryDate != nil {
		at := *b.LastInventoryDate
		c.LastInventoryDate = &at
	}
	return &c
}
