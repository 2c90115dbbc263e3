package domain

import "errors"

// User is the authenticated caller. Identity is issued by an external
// authenticator; this service only consumes it.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access to all vaults and may delete movements
	RoleAdmin Role = "admin"

	// RoleOperator can record movements and inventories in vaults they belong to
	RoleOperator Role = "operator"

	// RoleViewer can only view balances and history of vaults they belong to
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanRecord checks if the role can record movements and inventories
func (r Role) CanRecord() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanDelete checks if the role can soft-delete movements
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

// CanManageVaults checks if the role can create vaults and manage members
func (r Role) CanManageVaults() bool {
	return r == RoleAdmin
}

// CanReadAudit checks if the role can read audit trails
func (r Role) CanReadAudit() bool {
	return r == RoleAdmin
}

// SeesAllVaults reports whether vault membership is bypassed for this role.
func (r Role) SeesAllVaults() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
