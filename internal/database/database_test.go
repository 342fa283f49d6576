package database_test

import (
	"errors"
	"fmt"
	"testing"

	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestOpen_LogsThroughZapWithoutRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Config{
		DBDriver:       "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		DBAutoMigrate:  true,
	}
	db, err := database.Open(cfg, zap.New(core).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(cfg, db, &models.User{}))
	logs.TakeAll()

	var user models.User
	err = db.First(&user, "email = ?", "nobody@x.com").Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(t, logs.Len(), "a missing row is not logged")

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	entries := logs.FilterField(zap.String("component", "gorm")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "no_such_table")
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.Config{DBDriver: "mysql"}, nil)
	assert.Error(t, err)
}
