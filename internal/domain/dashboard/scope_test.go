package dashboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Admin(t *testing.T) {
	t.Run("carries tenant filter when tenant id is well-formed", func(t *testing.T) {
		tenantID := uuid.New()

		scope, err := Resolve(uuid.NewString(), identity.RoleAdmin, tenantID.String())

		require.NoError(t, err)
		require.NotNil(t, scope.Tenant)
		assert.Equal(t, tenantID, *scope.Tenant)
		assert.Nil(t, scope.Identity)
	})

	t.Run("empty tenant id widens to all tenants", func(t *testing.T) {
		scope, err := Resolve(uuid.NewString(), identity.RoleAdmin, "")

		require.NoError(t, err)
		assert.Nil(t, scope.Tenant)
		assert.Nil(t, scope.Identity)
	})

	t.Run("malformed tenant id degrades silently to all tenants", func(t *testing.T) {
		scope, err := Resolve(uuid.NewString(), identity.RoleAdmin, "not-a-uuid")

		require.NoError(t, err)
		assert.Nil(t, scope.Tenant)
	})

	t.Run("does not require a caller id", func(t *testing.T) {
		scope, err := Resolve("", identity.RoleAdmin, "")

		require.NoError(t, err)
		assert.Nil(t, scope.Identity)
	})
}

func TestResolve_Vendor(t *testing.T) {
	t.Run("carries vendor identity filter", func(t *testing.T) {
		vendorID := uuid.New()
		tenantID := uuid.New()

		scope, err := Resolve(vendorID.String(), identity.RoleVendor, tenantID.String())

		require.NoError(t, err)
		require.NotNil(t, scope.Identity)
		assert.Equal(t, identity.RoleVendor, scope.Identity.Role)
		assert.Equal(t, vendorID, scope.Identity.ID)
		require.NotNil(t, scope.Tenant)
		assert.Equal(t, tenantID, *scope.Tenant)
	})

	t.Run("missing caller id is rejected", func(t *testing.T) {
		_, err := Resolve("", identity.RoleVendor, uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("malformed caller id is rejected", func(t *testing.T) {
		_, err := Resolve("vendor-42", identity.RoleVendor, uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("nil uuid caller id is rejected", func(t *testing.T) {
		_, err := Resolve(uuid.Nil.String(), identity.RoleVendor, uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}

func TestResolve_Customer(t *testing.T) {
	t.Run("carries customer identity filter", func(t *testing.T) {
		customerID := uuid.New()

		scope, err := Resolve(customerID.String(), identity.RoleCustomer, "")

		require.NoError(t, err)
		require.NotNil(t, scope.Identity)
		assert.Equal(t, identity.RoleCustomer, scope.Identity.Role)
		assert.Equal(t, customerID, scope.Identity.ID)
		assert.Nil(t, scope.Tenant)
	})

	t.Run("missing caller id is rejected", func(t *testing.T) {
		_, err := Resolve("", identity.RoleCustomer, "")

		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}

func TestResolve_InvalidRole(t *testing.T) {
	_, err := Resolve(uuid.NewString(), identity.Role("superuser"), "")

	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestGlobal(t *testing.T) {
	scope := Global()

	assert.Nil(t, scope.Tenant)
	assert.Nil(t, scope.Identity)
}
