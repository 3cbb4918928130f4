package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
)

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, SeedDefaults(
		repository.NewPrivilegeRepo(db),
		repository.NewRoleRepo(db),
		repository.NewUserRepo(db),
		"admin@example.com", "admin123",
	))
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	seed(t, db)
	seed(t, db)

	roles := repository.NewRoleRepo(db)
	master, err := roles.FindByCode(model.RoleMasterAdmin)
	require.NoError(t, err)
	assert.Len(t, master.Privileges, len(model.DefaultPrivileges))

	admin, err := roles.FindByCode(model.RoleAdmin)
	require.NoError(t, err)
	for _, p := range admin.Privileges {
		assert.NotContains(t, model.UserManagementPrivileges, p.Code)
	}

	users, err := repository.NewUserRepo(db).FindAll()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.True(t, users[0].CheckPassword("admin123"))
	assert.Equal(t, model.RoleMasterAdmin, users[0].RoleCode())
	assert.True(t, users[0].HasPrivilege(model.PrivDashboardView))
}
