package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-backoffice-api/internal/model"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NotValidf("discount"), http.StatusBadRequest},
		{errors.BadRequestf("password"), http.StatusBadRequest},
		{errors.NotFoundf("order"), http.StatusNotFound},
		{errors.AlreadyExistsf("SKU"), http.StatusConflict},
		{errors.Unauthorizedf("token"), http.StatusUnauthorized},
		{errors.Forbiddenf("privilege"), http.StatusForbidden},
		{errors.Annotate(errors.NotFoundf("order"), "loading"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestGetNavigation(t *testing.T) {
	app := fiber.New()
	app.Get("/navigation", func(c *fiber.Ctx) error {
		c.Locals("user_privileges", []string{"order:view"})
		return c.Next()
	}, GetNavigation)

	status, _, _ := do(t, app, http.MethodGet, "/navigation?area=footer", "")
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodGet, "/navigation?area=sidebar", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []model.MenuEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/orders", entries[0].Path)
}
