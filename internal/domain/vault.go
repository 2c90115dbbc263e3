package domain

import "time"

// Vault is a cash-holding unit ("coffre") with its own ledger of movements and inventories.
type Vault struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VaultMember links a user to a vault they may operate on.
type VaultMember struct {
	VaultID   string
	UserID    string
	CreatedAt time.Time
}
