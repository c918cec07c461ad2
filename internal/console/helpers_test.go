package console_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"inventory/internal/config"
	"inventory/internal/console"
	"inventory/internal/database"
	"inventory/internal/server"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	testEmail    = "owner@example.com"
	testPassword = "Passw0rd!"
)

// newAPIServer runs the real API on a private in-memory database.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_DSN", "file:console_"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	v.Set("JWT_SECRET", "console_test_secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	db, err := database.Open(cfg.Database, false, zap.NewNop())
	require.NoError(t, err)

	app := server.NewApp(cfg, db, nil, zap.NewNop())
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv
}

// newRegisteredAPI starts the API with testEmail already registered.
func newRegisteredAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := newAPIServer(t)
	client := console.NewClient(console.ClientConfig{BaseURL: srv.URL}, console.NewMemoryTokenStore())
	require.NoError(t, client.Register(context.Background(), testEmail, testPassword))
	return srv
}

func newConsole(t *testing.T, baseURL string, tokens console.TokenStore) *console.Console {
	t.Helper()
	renderer, err := console.NewRenderer()
	require.NoError(t, err)
	client := console.NewClient(console.ClientConfig{BaseURL: baseURL}, tokens)
	return console.New(client, tokens, renderer, zaptest.NewLogger(t))
}

// loggedInConsole returns a console logged in against a fresh API.
func loggedInConsole(t *testing.T) (*console.Console, console.TokenStore) {
	t.Helper()
	srv := newRegisteredAPI(t)
	tokens := console.NewMemoryTokenStore()
	c := newConsole(t, srv.URL, tokens)
	require.NoError(t, c.Login(context.Background(), testEmail, testPassword))
	return c, tokens
}
