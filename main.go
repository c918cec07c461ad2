package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/server"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.LogLevel, cfg.Server.Env, "inventory-api")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(cfg.Database, cfg.IsProduction(), zl)
	if err != nil {
		zl.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Product events are optional; without RABBITMQ_URL nothing is published.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
		})
		if err != nil {
			zl.Fatal("Failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient
		zl.Info("Publishing product events", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	app := server.NewApp(cfg, db, publisher, zl)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := app.Listen(cfg.Server.Port); err != nil {
			zl.Error("Server stopped with error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	zl.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zl.Error("Error during Fiber shutdown", zap.Error(err))
	}
	zl.Info("Server gracefully stopped")
}
