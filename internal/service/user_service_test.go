package service

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
)

func newUserService(db *gorm.DB) UserService {
	return NewUserService(repository.NewUserRepo(db), repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db))
}

func roleID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	role, err := repository.NewRoleRepo(db).FindByCode(code)
	require.NoError(t, err)
	return role.ID
}

func TestCreateUserTakesRolePrivileges(t *testing.T) {
	db := testdb.Open(t)
	seed(t, db)
	svc := newUserService(db)

	user, err := svc.CreateUser(&CreateUserRequest{
		Email:    "staff@example.com",
		Password: "secret1",
		FullName: "Sam Staff",
		RoleID:   roleID(t, db, model.RoleStaff),
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, user.RoleCode())
	assert.NotEmpty(t, user.Privileges)
	assert.False(t, user.HasPrivilege(model.PrivUserCreate))

	_, err = svc.CreateUser(&CreateUserRequest{
		Email:    "staff@example.com",
		Password: "secret1",
		FullName: "Dup",
		RoleID:   roleID(t, db, model.RoleStaff),
	}, testActor)
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	_, err = svc.CreateUser(&CreateUserRequest{
		Email:    "other@example.com",
		Password: "secret1",
		FullName: "Other",
		RoleID:   9999,
	}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestUpdateUserPrivileges(t *testing.T) {
	db := testdb.Open(t)
	seed(t, db)
	svc := newUserService(db)

	user, err := svc.CreateUser(&CreateUserRequest{
		Email:    "staff@example.com",
		Password: "secret1",
		FullName: "Sam Staff",
		RoleID:   roleID(t, db, model.RoleStaff),
	}, testActor)
	require.NoError(t, err)

	user, err = svc.UpdateUserPrivileges(user.ID, []string{model.PrivOrderView}, testActor)
	require.NoError(t, err)
	assert.Equal(t, []string{model.PrivOrderView}, user.PrivilegeCodes())

	_, err = svc.UpdateUserPrivileges(user.ID, []string{"order:teleport"}, testActor)
	assert.True(t, errors.Is(err, errors.NotValid))

	user, err = svc.UpdateUserPrivileges(user.ID, []string{}, testActor)
	require.NoError(t, err)
	assert.Empty(t, user.Privileges)
}

func TestDeleteUser(t *testing.T) {
	db := testdb.Open(t)
	seed(t, db)
	svc := newUserService(db)

	user, err := svc.CreateUser(&CreateUserRequest{
		Email:    "temp@example.com",
		Password: "secret1",
		FullName: "Temp",
		RoleID:   roleID(t, db, model.RoleStaff),
	}, testActor)
	require.NoError(t, err)

	self := Actor{ID: user.ID.String()}
	assert.True(t, errors.Is(svc.DeleteUser(user.ID, self), errors.BadRequest))

	require.NoError(t, svc.DeleteUser(user.ID, testActor))
	_, err = svc.GetUserByID(user.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}
