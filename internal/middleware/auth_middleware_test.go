package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"
	"go-backoffice-api/internal/testdb"
	"go-backoffice-api/pkg/jwt"
)

func setup(t *testing.T) (*fiber.App, repository.UserRepository, string) {
	t.Helper()
	jwt.Configure("middleware-secret", time.Hour)
	db := testdb.Open(t)
	users := repository.NewUserRepo(db)
	require.NoError(t, service.SeedDefaults(repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), users, "admin@example.com", "admin123"))

	login, err := service.NewAuthService(users, nil).Login("admin@example.com", "admin123")
	require.NoError(t, err)

	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendString(c.Locals("user_email").(string)) }
	app.Get("/orders", RequireAuth(users), RequirePrivilege(model.PrivOrderView), ok)
	app.Get("/nope", RequireAuth(users), RequirePrivilege("warehouse:teleport"), ok)
	app.Get("/either", RequireAuth(users), RequireAnyPrivilege("warehouse:teleport", model.PrivTicketUpdate), ok)
	return app, users, login.Token
}

func get(t *testing.T, app *fiber.App, path, auth string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	app, _, token := setup(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/orders", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/orders", "Token "+token))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/orders", "Bearer garbage"))
	assert.Equal(t, http.StatusOK, get(t, app, "/orders", "Bearer "+token))
	assert.Equal(t, http.StatusOK, get(t, app, "/orders", "bearer "+token))
}

func TestRequireAuthRejectsReplacedSession(t *testing.T) {
	app, users, token := setup(t)

	_, err := service.NewAuthService(users, nil).Login("admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/orders", "Bearer "+token))
}

func TestRequirePrivilege(t *testing.T) {
	app, _, token := setup(t)

	assert.Equal(t, http.StatusForbidden, get(t, app, "/nope", "Bearer "+token))
	assert.Equal(t, http.StatusOK, get(t, app, "/either", "Bearer "+token))
}
