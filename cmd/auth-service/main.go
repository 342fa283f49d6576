package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"tokoadmin/internal/app"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/logger"
	"tokoadmin/internal/models"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Auth)
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
	if err := database.Migrate(cfg, db, &models.User{}); err != nil {
		lg.Fatalw("failed to migrate database", "error", err)
	}

	server := app.NewAuthApp(app.Deps{Config: cfg, Logger: lg, DB: db})

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
	if err := server.Shutdown(); err != nil {
		lg.Errorw("error during shutdown", "error", err)
	}
	lg.Info("server gracefully stopped")
}
