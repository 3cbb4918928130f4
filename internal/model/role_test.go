package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(ps []Privilege) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Code
	}
	return out
}

func TestDefaultPrivilegesFor(t *testing.T) {
	master := DefaultPrivilegesFor(RoleMasterAdmin, DefaultPrivileges)
	assert.Len(t, master, len(DefaultPrivileges))

	admin := codes(DefaultPrivilegesFor(RoleAdmin, DefaultPrivileges))
	assert.NotContains(t, admin, PrivUserCreate)
	assert.Contains(t, admin, PrivSmsSend)
	assert.Len(t, admin, len(DefaultPrivileges)-len(UserManagementPrivileges))

	staff := codes(DefaultPrivilegesFor(RoleStaff, DefaultPrivileges))
	assert.Contains(t, staff, PrivPurchaseOrderReceive)
	assert.NotContains(t, staff, PrivProductDelete)

	assert.Empty(t, DefaultPrivilegesFor("UNKNOWN", DefaultPrivileges))
}
