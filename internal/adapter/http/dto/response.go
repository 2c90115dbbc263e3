package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coffre/internal/domain"
)

// money renders amounts with exactly two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// VaultResponse represents a vault in API responses.
type VaultResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VaultFromDomain converts domain vault to response.
func VaultFromDomain(v *domain.Vault) *VaultResponse {
	return &VaultResponse{
		ID:        v.ID,
		Name:      v.Name,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// VaultsFromDomain converts domain vaults to responses.
func VaultsFromDomain(vaults []*domain.Vault) []*VaultResponse {
	result := make([]*VaultResponse, len(vaults))
	for i, v := range vaults {
		result[i] = VaultFromDomain(v)
	}
	return result
}

// ListVaultsResponse represents a list of vaults.
type ListVaultsResponse struct {
	Vaults []*VaultResponse `json:"vaults"`
	Total  int64            `json:"total"`
}

// VaultMemberResponse represents a vault membership.
type VaultMemberResponse struct {
	VaultID   string    `json:"vault_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VaultMemberFromDomain converts a domain membership to response.
func VaultMemberFromDomain(m *domain.VaultMember) *VaultMemberResponse {
	return &VaultMemberResponse{
		VaultID:   m.VaultID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

// BalanceResponse represents the derived balance of a vault.
type BalanceResponse struct {
	VaultID                  string     `json:"vault_id"`
	Balance                  string     `json:"balance"`
	BalanceCents             int64      `json:"balance_cents"`
	LastInventoryDate        *time.Time `json:"last_inventory_date"`
	LastInventoryAmount      string     `json:"last_inventory_amount"`
	LastInventoryAmountCents int64      `json:"last_inventory_amount_cents"`
}

// BalanceFromDomain converts a domain balance to response.
func BalanceFromDomain(vaultID string, b *domain.BalanceInfo) *BalanceResponse {
	return &BalanceResponse{
		VaultID:                  vaultID,
		Balance:                  money(b.Balance),
		BalanceCents:             b.BalanceCents,
		LastInventoryDate:        b.LastInventoryDate,
		LastInventoryAmount:      money(b.LastInventoryAmount),
		LastInventoryAmountCents: b.LastInventoryAmountCents,
	}
}

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID          string     `json:"id"`
	VaultID     string     `json:"vault_id"`
	Type        string     `json:"type"`
	Amount      string     `json:"amount"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:          m.ID,
		VaultID:     m.VaultID,
		Type:        string(m.Type),
		Amount:      money(m.Amount),
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		Deleted:     m.IsDeleted(),
		DeletedAt:   m.DeletedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse represents a page of movements.
type ListMovementsResponse struct {
	Movements []*MovementResponse `json:"movements"`
	Total     int64               `json:"total"`
}

// InventoryResponse represents an inventory in API responses.
type InventoryResponse struct {
	ID          string    `json:"id"`
	VaultID     string    `json:"vault_id"`
	Seq         int64     `json:"seq"`
	TotalAmount string    `json:"total_amount"`
	Notes       string    `json:"notes,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// InventoryFromDomain converts domain inventory to response.
func InventoryFromDomain(i *domain.Inventory) *InventoryResponse {
	return &InventoryResponse{
		ID:          i.ID,
		VaultID:     i.VaultID,
		Seq:         i.Seq,
		TotalAmount: money(i.TotalAmount),
		Notes:       i.Notes,
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt,
	}
}

// InventoriesFromDomain converts domain inventories to responses.
func InventoriesFromDomain(inventories []*domain.Inventory) []*InventoryResponse {
	result := make([]*InventoryResponse, len(inventories))
	for i, inv := range inventories {
		result[i] = InventoryFromDomain(inv)
	}
	return result
}

// ListInventoriesResponse represents a page of inventories.
type ListInventoriesResponse struct {
	Inventories []*InventoryResponse `json:"inventories"`
	Total       int64                `json:"total"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AuditLogResponse represents one audit trail entry in API responses.
type AuditLogResponse struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Action      string      `json:"action"`
	Status      string      `json:"status"`
	BeforeState domain.JSON `json:"before_state,omitempty"`
	AfterState  domain.JSON `json:"after_state,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:          l.ID,
			UserID:      l.UserID,
			Action:      string(l.Action),
			Status:      string(l.Status),
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// AuditTrailResponse represents the audit trail of a resource.
type AuditTrailResponse struct {
	ResourceType string              `json:"resource_type"`
	ResourceID   string              `json:"resource_id"`
	Entries      []*AuditLogResponse `json:"entries"`
}
