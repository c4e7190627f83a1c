package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tradekit/go-auth"
)

func TestRoleIsValid(t *testing.T) {
	for _, role := range auth.GetAllRoles() {
		assert.True(t, role.IsValid(), string(role))
	}
	assert.False(t, auth.UserRole("superuser").IsValid())
	assert.False(t, auth.UserRole("").IsValid())
}

func TestRolePermissionLadder(t *testing.T) {
	tests := []struct {
		role   auth.UserRole
		read   bool
		edit   bool
		create bool
		del    bool
	}{
		{auth.RoleViewer, true, false, false, false},
		{auth.RoleTrader, true, true, false, false},
		{auth.RoleAdmin, true, true, true, false},
		{auth.RoleOwner, true, true, true, true},
		{"unknown", false, false, false, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.read, tc.role.CanRead())
			assert.Equal(t, tc.edit, tc.role.CanEdit())
			assert.Equal(t, tc.create, tc.role.CanCreate())
			assert.Equal(t, tc.del, tc.role.CanDelete())
		})
	}
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, auth.RoleOwner.IsAtLeast(auth.RoleViewer))
	assert.True(t, auth.RoleTrader.IsAtLeast(auth.RoleTrader))
	assert.False(t, auth.RoleViewer.IsAtLeast(auth.RoleOwner))
	assert.False(t, auth.UserRole("unknown").IsAtLeast(auth.RoleViewer))
	assert.False(t, auth.RoleOwner.IsAtLeast("unknown"))
}

func TestGetAllRolesOrder(t *testing.T) {
	roles := auth.GetAllRoles()
	assert.Equal(t, []auth.UserRole{auth.RoleViewer, auth.RoleTrader, auth.RoleAdmin, auth.RoleOwner}, roles)
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("trader")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleTrader, role)

	_, ok = auth.ParseRole("root")
	assert.False(t, ok)
}
