package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"inventory/internal/config"
	"inventory/internal/console"
	"inventory/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.LogLevel, cfg.Server.Env, "inventory-console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	tokens, err := console.NewFileTokenStore(cfg.Console.StateFile)
	if err != nil {
		zl.Fatal("Failed to open session file", zap.Error(err))
	}

	renderer, err := console.NewRenderer()
	if err != nil {
		zl.Fatal("Failed to load templates", zap.Error(err))
	}

	client := console.NewClient(console.ClientConfig{BaseURL: cfg.Console.APIURL}, tokens)
	ui := console.New(client, tokens, renderer, zl)

	app := fiber.New(fiber.Config{AppName: "inventory-console"})
	app.Use(requestid.New())
	app.Use(logger.Middleware(zl))
	app.Use(recover.New())
	console.NewPageHandler(ui, zl).RegisterRoutes(app)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("Starting console",
			zap.String("port", cfg.Console.Port),
			zap.String("api", cfg.Console.APIURL),
		)
		if err := app.Listen(cfg.Console.Port); err != nil {
			zl.Error("Console stopped with error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	zl.Info("Shutting down console...")
	if err := app.Shutdown(); err != nil {
		zl.Error("Error during Fiber shutdown", zap.Error(err))
	}
}
