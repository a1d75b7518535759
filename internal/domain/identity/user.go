package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a marketplace account.
// The set is closed; dashboard composition dispatches exhaustively on it.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// User is a marketplace account. It is owned and mutated by the
// identity collaborator; this engine only reads it.
type User struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Role           Role      `json:"role"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	BusinessName   string    `json:"business_name,omitempty"`
	VendorApproved bool      `json:"vendor_approved"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
