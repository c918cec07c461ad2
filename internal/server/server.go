package server

import (
	"errors"
	"time"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/handlers"
	"inventory/internal/logger"
	"inventory/internal/metrics"
	"inventory/internal/middleware"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewApp wires repositories, services and handlers into a Fiber app.
// publisher may be nil, in which case product events are not sent.
func NewApp(cfg *config.Config, db *gorm.DB, publisher services.EventPublisher, log *zap.Logger) *fiber.App {
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// Tokens from a random secret do not survive a restart.
		jwtSecret = uuid.NewString()
		log.Warn("JWT_SECRET is empty, using a random secret for this run")
	}

	m := metrics.New(cfg.Metrics.Prefix)

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, publisher, m, log)
	authService := services.NewAuthService(userRepo, jwtSecret, cfg.JWT.TokenTTL, m)

	productHandler := handlers.NewProductHandler(productService, log)
	authHandler := handlers.NewAuthHandler(authService, log)
	healthHandler := handlers.NewHealthHandler(func() error {
		return database.Ping(db, 2*time.Second)
	})

	app := fiber.New(fiber.Config{
		AppName:      "inventory",
		ErrorHandler: jsonErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(recover.New())
	app.Use(m.Middleware())

	healthHandler.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api, middleware.AuthRequired(authService, log))

	return app
}

// jsonErrorHandler keeps error bodies in the same {"message": ...} shape as the handlers.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
