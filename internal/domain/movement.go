package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a cash movement.
type MovementType string

const (
	// MovementTypeEntry adds cash to the vault.
	MovementTypeEntry MovementType = "ENTRY"
	// MovementTypeExit removes cash from the vault.
	MovementTypeExit MovementType = "EXIT"
)

// BalanceMovementTypes are the movement types replayed by the balance computation.
var BalanceMovementTypes = []MovementType{MovementTypeEntry, MovementTypeExit}

// ParseMovementType parses a case-insensitive movement type.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidMovementType, s)
	}
	return t, nil
}

// IsValid reports whether t is a known movement type.
func (t MovementType) IsValid() bool {
	return t == MovementTypeEntry || t == MovementTypeExit
}

// Movement is a signed cash event recorded against a vault.
// Amount is always non-negative; the sign comes from Type.
type Movement struct {
	ID          string
	VaultID     string
	Type        MovementType
	Amount      decimal.Decimal
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// IsDeleted reports whether the movement has been soft-deleted.
func (m *Movement) IsDeleted() bool {
	return m.DeletedAt != nil
}

// SoftDelete marks the movement as deleted at the given time.
func (m *Movement) SoftDelete(at time.Time) error {
	if m.IsDeleted() {
		return ErrMovementAlreadyDeleted
	}
	m.DeletedAt = &at
	return nil
}

// MovementAmount is the projection of a movement needed to compute a balance.
type MovementAmount struct {
	Type   MovementType
	Amount decimal.Decimal
}

// SignedMinorUnits returns the amount in cents, positive for entries and negative for exits.
func (m MovementAmount) SignedMinorUnits() int64 {
	cents := ToMinorUnits(m.Amount)
	if m.Type == MovementTypeExit {
		return -cents
	}
	return cents
}
