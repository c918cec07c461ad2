package logger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	log, err := logger.New("debug", "production", "inventory-api")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = logger.New("not-a-level", "development", "inventory-api")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(logger.Middleware(base))
	app.Get("/ok", func(c *fiber.Ctx) error {
		logger.FromCtx(c, zap.NewNop()).Info("inside handler")
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return fiber.ErrInternalServerError
	})

	for path, status := range map[string]int{"/ok": 200, "/missing": 404, "/broken": 500} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode, path)
	}

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.NotEmpty(t, inside[0].ContextMap()["request_id"])

	requests := logs.FilterMessage("HTTP request")
	var paths, methods []string
	for _, entry := range requests.All() {
		fields := entry.ContextMap()
		paths = append(paths, fields["path"].(string))
		methods = append(methods, fields["method"].(string))
	}
	assert.ElementsMatch(t, []string{"/ok", "/missing", "/broken"}, paths)
	assert.Equal(t, []string{"GET", "GET", "GET"}, methods)
	assert.Equal(t, 1, requests.FilterField(zap.String("path", "/ok")).FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, requests.FilterField(zap.String("path", "/missing")).FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, requests.FilterField(zap.String("path", "/broken")).FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestFromCtxFallback(t *testing.T) {
	fallback := zap.NewNop()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Same(t, fallback, logger.FromCtx(c, fallback))
		return nil
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
}
