package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is a physical cash count of a vault. The latest inventory is
// authoritative: movements recorded before it are never replayed.
type Inventory struct {
	ID      string
	VaultID string
	// Seq is assigned by the store and strictly increases per insert; it
	// orders inventories sharing the same CreatedAt.
	Seq         int64
	TotalAmount decimal.Decimal
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
}

// Snapshot returns the part of the inventory the balance computation reads.
func (i *Inventory) Snapshot() *InventorySnapshot {
	return &InventorySnapshot{
		TotalAmount: i.TotalAmount,
		CreatedAt:   i.CreatedAt,
	}
}

// InventorySnapshot is the counted total of an inventory and when it was taken.
type InventorySnapshot struct {
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}
