package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithSecret(t, "test_jwt_secret", zap.NewNop())
}

func newTestAppWithSecret(t *testing.T, secret string, log *zap.Logger) *fiber.App {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_DSN", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	v.Set("JWT_SECRET", secret)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	db, err := database.Open(cfg.Database, false, zap.NewNop())
	require.NoError(t, err)

	return server.NewApp(cfg, db, nil, log)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Contains(t, string(body), `"database":"up"`)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestUnauthenticatedAccess(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/products", "/api/products/1"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterLoginAndList(t *testing.T) {
	assertRegisterLoginAndList(t, newTestApp(t))
}

func TestRandomSecretWithoutJWTSecret(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	app := newTestAppWithSecret(t, "", zap.New(core))

	assert.Equal(t, 1, logs.FilterMessage("JWT_SECRET is empty, using a random secret for this run").Len())
	assertRegisterLoginAndList(t, app)
}

func assertRegisterLoginAndList(t *testing.T, app *fiber.App) {
	t.Helper()

	creds, _ := json.Marshal(map[string]string{"email": "owner@example.com", "password": "Passw0rd!"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(creds))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(creds))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var login struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "owner@example.com", login.Email)

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(body))
}

func TestMetricsAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"message"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "inventory_http_requests_total")
}
