package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for a vault mutation
type AuditLog struct {
	ID           string
	UserID       string      // Who performed the action
	Action       AuditAction // What action (movement.create, inventory.create, ...)
	ResourceType string      // Type of resource (vault, movement, inventory)
	ResourceID   string
	VaultID      string
	BeforeState  JSON
	AfterState   JSON
	Status       AuditStatus
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionVaultCreate     AuditAction = "vault.create"
	AuditActionVaultAddMember  AuditAction = "vault.add_member"
	AuditActionMovementCreate  AuditAction = "movement.create"
	AuditActionMovementDelete  AuditAction = "movement.delete"
	AuditActionInventoryCreate AuditAction = "inventory.create"
)

// Resource types
const (
	ResourceTypeVault     = "vault"
	ResourceTypeMovement  = "movement"
	ResourceTypeInventory = "inventory"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
