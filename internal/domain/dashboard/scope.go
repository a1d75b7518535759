package dashboard

import (
	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/identity"
)

// IdentityFilter restricts queries to records owned by one caller,
// either a vendor or a customer.
type IdentityFilter struct {
	Role identity.Role
	ID   uuid.UUID
}

// Scope is the (tenant, identity) filter pair narrowing every query to
// what a caller is authorized to see. It is derived per request and
// never persisted.
//
// A nil Tenant means no tenant restriction. That is a valid state for
// admin callers, where it deliberately widens queries to all tenants;
// it is distinct from a tenant filter that matches nothing.
type Scope struct {
	Tenant   *uuid.UUID
	Identity *IdentityFilter
}

// Resolve builds a Scope for the caller.
//
// Vendor and customer roles require a well-formed caller id and always
// carry an identity filter equal to the caller. Admin scopes carry only
// the tenant filter.
//
// A malformed tenant id is treated as absent rather than rejected, so
// tenant scoping degrades to "all tenants". This permissive policy is
// intentional; callers that need strict tenancy enforce it upstream.
func Resolve(callerID string, role identity.Role, tenantID string) (Scope, error) {
	if !role.IsValid() {
		return Scope{}, ErrInvalidIdentity
	}

	scope := Scope{}
	if tid, err := uuid.Parse(tenantID); err == nil {
		scope.Tenant = &tid
	}

	switch role {
	case identity.RoleAdmin:
		return scope, nil
	case identity.RoleVendor, identity.RoleCustomer:
		id, err := uuid.Parse(callerID)
		if err != nil || id == uuid.Nil {
			return Scope{}, ErrInvalidIdentity
		}
		scope.Identity = &IdentityFilter{Role: role, ID: id}
		return scope, nil
	}
	return Scope{}, ErrInvalidIdentity
}

// Global returns a scope with no tenant and no identity restriction.
// Used for the platform-wide admin user counts.
func Global() Scope {
	return Scope{}
}
