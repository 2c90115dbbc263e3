package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// CreateVaultRequest represents a request to create a vault.
type CreateVaultRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVaultRequest) ToUseCaseInput() usecase.CreateVaultInput {
	return usecase.CreateVaultInput{
		Name:      r.Name,
		MemberIDs: r.MemberIDs,
	}
}

// AddMemberRequest represents a request to add a user to a vault.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// RecordMovementRequest represents a request to record a cash movement.
// Amount is a decimal string such as "250.50".
type RecordMovementRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordMovementRequest) ToUseCaseInput(vaultID string) (usecase.RecordMovementInput, error) {
	movementType, err := domain.ParseMovementType(r.Type)
	if err != nil {
		return usecase.RecordMovementInput{}, err
	}

	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.RecordMovementInput{}, err
	}

	return usecase.RecordMovementInput{
		VaultID:     vaultID,
		Type:        movementType,
		Amount:      amount,
		Description: r.Description,
	}, nil
}

// RecordInventoryRequest represents a request to record a physical count.
type RecordInventoryRequest struct {
	TotalAmount string `json:"total_amount"`
	Notes       string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordInventoryRequest) ToUseCaseInput(vaultID string) (usecase.RecordInventoryInput, error) {
	total, err := parseAmount(r.TotalAmount)
	if err != nil {
		return usecase.RecordInventoryInput{}, err
	}

	return usecase.RecordInventoryInput{
		VaultID:     vaultID,
		TotalAmount: total,
		Notes:       r.Notes,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, s)
	}
	return amount, nil
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
