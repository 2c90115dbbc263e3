package domain

import "errors"

var (
	// Vault errors
	ErrVaultNotFound  = errors.New("vault not found")
	ErrNotVaultMember = errors.New("user is not a member of this vault")
	ErrInvalidUserID  = errors.New("user id is required")

	// Movement errors
	ErrMovementNotFound       = errors.New("movement not found")
	ErrMovementAlreadyDeleted = errors.New("movement already deleted")
	ErrInvalidMovementType    = errors.New("movement type must be ENTRY or EXIT")
	ErrInvalidAmount          = errors.New("amount must be positive")

	// Inventory errors
	ErrNegativeInventory = errors.New("inventory total cannot be negative")
)
