package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-backoffice-api/internal/config"
	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/service"
	"go-backoffice-api/internal/testdb"
	"go-backoffice-api/pkg/jwt"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	jwt.Configure("server-secret", time.Hour)
	db := testdb.Open(t)
	require.NoError(t, service.SeedDefaults(
		repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), repository.NewUserRepo(db),
		"admin@example.com", "admin123",
	))
	return New(Deps{Config: config.FromEnv(), DB: db, Registry: metrics.NewRegistry()})
}

func call(t *testing.T, s *Server, method, path, token, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func tokenFrom(t *testing.T, body string) string {
	t.Helper()
	var login service.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	status, _ := call(t, s, http.MethodGet, "/api/v1/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginThenBrowse(t *testing.T) {
	s := newTestServer(t)

	status, body := call(t, s, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@example.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, status, body)

	token := tokenFrom(t, body)
	status, body = call(t, s, http.MethodGet, "/api/v1/products", token, "")
	assert.Equal(t, http.StatusOK, status, body)

	status, _ = call(t, s, http.MethodGet, "/api/v1/dashboard/stats", token, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, s, http.MethodGet, "/api/v1/products/not-a-uuid", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, body := call(t, s, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}
