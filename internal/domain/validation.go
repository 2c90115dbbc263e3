package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidVaultName   = errors.New("invalid vault name")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrDescriptionTooLong = errors.New("description exceeds limit")
)

// Validation constants
const (
	MaxVaultNameLength   = 255
	MinVaultNameLength   = 1
	MaxDescriptionLength = 1024
	MaxMovementAmount    = "1000000000000" // 1 trillion
	MinMovementAmount    = "0.01"
)

// ValidateVaultName validates vault name
func ValidateVaultName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinVaultNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidVaultName)
	}

	if len(name) > MaxVaultNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidVaultName, MaxVaultNameLength)
	}

	return nil
}

// ValidateMovementAmount validates an amount after it has been rounded to cents.
func ValidateMovementAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount := decimal.RequireFromString(MinMovementAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinMovementAmount)
	}

	maxAmount := decimal.RequireFromString(MaxMovementAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxMovementAmount)
	}

	return nil
}

// ValidateInventoryTotal validates a counted inventory total. Zero is a valid count.
func ValidateInventoryTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return ErrNegativeInventory
	}

	maxAmount := decimal.RequireFromString(MaxMovementAmount)
	if total.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxMovementAmount)
	}

	return nil
}

// ValidateDescription validates free-text notes attached to movements and inventories.
func ValidateDescription(s string) error {
	if len(s) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters max", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
