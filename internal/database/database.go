// Package database opens the shared relational database behind a sized
// connection pool.
package database

import (
	"context"
	"fmt"
	"time"

	"tokoadmin/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects using cfg.DBDriver and applies the pool limits from cfg. gorm
// warnings and errors go to lg; a nil lg discards them.
func Open(cfg config.Config, lg *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(lg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	maxOpen := cfg.DBMaxOpenConns
	if cfg.DBDriver == "sqlite" {
		// sqlite serializes writers; a single connection avoids "database is locked".
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(cfg.DBMaxIdleConns, maxOpen))
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return db, nil
}

// gormWriter feeds gorm's log lines into zap.
type gormWriter struct {
	lg *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.lg.Warnf(format, args...)
}

// newGormLogger logs slow queries and errors. A missing row is an expected
// outcome of lookups and is not logged.
func newGormLogger(lg *zap.SugaredLogger) gormlogger.Interface {
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return gormlogger.New(gormWriter{lg: lg.With("component", "gorm")}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates the tables for the given models when enabled.
func Migrate(cfg config.Config, db *gorm.DB, models ...interface{}) error {
	if !cfg.DBAutoMigrate {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks the pool with ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
