package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tokoadmin/internal/app"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/logger"
	"tokoadmin/internal/models"
	"tokoadmin/internal/services"
	"tokoadmin/pkg/rabbitmq"

	"github.com/joho/godotenv"
)

// productDeletedQueue receives product.deleted events for shipment cleanup.
const productDeletedQueue = "shipping.product-deleted"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Shipping)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg := logger.Service(logger.New(cfg.LogLevel), cfg.Service)
	defer func() { _ = lg.Sync() }()

	db, err := database.Open(cfg, lg)
	if err != nil {
		lg.Fatalw("failed to open database", "error", err)
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(cfg, db, &models.Shipment{}); err != nil {
		lg.Fatalw("failed to migrate database", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		publisher services.EventPublisher
		mq        *rabbitmq.Client
	)
	if cfg.RabbitMQURL != "" {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: lg})
		if err != nil {
			lg.Fatalw("failed to connect to RabbitMQ", "error", err)
		}
		defer mq.Close()
		publisher = mq
	} else {
		lg.Warn("RABBITMQ_URL not set, shipping events are neither published nor consumed")
	}

	server, shippingService := app.NewShippingApp(app.Deps{Config: cfg, Logger: lg, DB: db, Publisher: publisher})

	if mq != nil {
		if err := mq.Consume(ctx, productDeletedQueue, services.EventProductDeleted, shippingService.HandleEvent); err != nil {
			lg.Fatalw("failed to start consumer", "queue", productDeletedQueue, "error", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		lg.Infow("starting server", "port", cfg.Port)
		if err := server.Listen(cfg.Port); err != nil {
			lg.Fatalw("server failed to start", "error", err)
		}
	}()

	<-quit
	lg.Info("shutting down server")
	cancel()
	if err := server.Shutdown(); err != nil {
		lg.Errorw("error during shutdown", "error", err)
	}
	lg.Info("server gracefully stopped")
}
