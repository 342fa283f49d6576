package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tokoadmin/internal/app"
	"tokoadmin/internal/config"
	"tokoadmin/internal/gateway"
	"tokoadmin/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Gateway)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg := logger.Service(logger.New(cfg.LogLevel), cfg.Service)
	defer func() { _ = lg.Sync() }()

	var storage fiber.Storage
	if cfg.RedisAddr != "" {
		rdb, err := gateway.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			lg.Fatalw("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		}
		rs := gateway.NewRedisStorage(rdb)
		defer func() { _ = rs.Close() }()
		storage = rs
		lg.Infow("sessions stored in Redis", "addr", cfg.RedisAddr)
	} else {
		lg.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	server, err := app.NewGatewayApp(cfg, lg, storage)
	if err != nil {
		lg.Fatalw("failed to build gateway", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		lg.Infow("starting gateway", "port", cfg.Port,
			"products", cfg.ProductsAPI, "shipping", cfg.ShippingAPI, "auth", cfg.AuthAPI)
		if err := server.Listen(cfg.Port); err != nil {
			lg.Fatalw("server failed to start", "error", err)
		}
	}()

	<-quit
	lg.Info("shutting down server")
	if err := server.Shutdown(); err != nil {
		lg.Errorw("error during shutdown", "error", err)
	}
	lg.Info("server gracefully stopped")
}
