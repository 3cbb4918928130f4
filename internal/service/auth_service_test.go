package service

import (
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/testdb"
	"go-backoffice-api/pkg/jwt"
)

func TestLoginAndValidate(t *testing.T) {
	jwt.Configure("test-secret", time.Hour)
	db := testdb.Open(t)
	seed(t, db)

	clock := time.Now()
	svc := NewAuthService(repository.NewUserRepo(db), nil).(*authService)
	svc.now = func() time.Time { return clock }

	_, err := svc.Login("admin@example.com", "wrong")
	assert.True(t, errors.Is(err, errors.Unauthorized))

	first, err := svc.Login("admin@example.com", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.NotEmpty(t, first.Privileges)

	res, err := svc.ValidateToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", res.User.Email)

	// a second login invalidates the first token
	second, err := svc.Login("admin@example.com", "admin123")
	require.NoError(t, err)
	_, err = svc.ValidateToken(first.Token)
	assert.True(t, errors.Is(err, errors.Unauthorized))

	// idle sessions expire unless a heartbeat arrives
	clock = clock.Add(SessionIdleTimeout - time.Second)
	require.NoError(t, svc.Heartbeat(res.User.ID))
	clock = clock.Add(SessionIdleTimeout - time.Second)
	_, err = svc.ValidateToken(second.Token)
	require.NoError(t, err)

	clock = clock.Add(SessionIdleTimeout + time.Second)
	_, err = svc.ValidateToken(second.Token)
	assert.True(t, errors.Is(err, errors.Unauthorized))
}

func TestResetPassword(t *testing.T) {
	db := testdb.Open(t)
	seed(t, db)
	svc := NewAuthService(repository.NewUserRepo(db), nil)

	err := svc.ResetPassword("admin@example.com", "nope", "newpass1")
	assert.True(t, errors.Is(err, errors.BadRequest))

	require.NoError(t, svc.ResetPassword("admin@example.com", "admin123", "newpass1"))
	user, err := repository.NewUserRepo(db).FindByEmail("admin@example.com")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("newpass1"))

	err = svc.ResetPassword("ghost@example.com", "x", "y")
	assert.True(t, errors.Is(err, errors.NotFound))
}
