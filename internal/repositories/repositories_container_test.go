//go:build container

package repositories_test

import (
	"context"
	"errors"
	"testing"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_ConflictsAndCascade(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		DBDriver:       "postgres",
		DatabaseDSN:    testhelpers.Postgres(t),
		DBMaxOpenConns: 4,
		DBMaxIdleConns: 2,
		DBAutoMigrate:  true,
	}
	db, err := database.Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(cfg, db, &models.User{}, &models.Product{}, &models.Shipment{}))

	users := repositories.NewGORMUserRepository(db)
	require.NoError(t, users.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "hash"}))
	err = users.Create(ctx, &models.User{Name: "B", Email: "a@x.com", Password: "hash"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "duplicate key is translated")

	products := repositories.NewGORMProductRepository(db)
	shipments := repositories.NewGORMShipmentRepository(db)

	p := &models.Product{Name: "Kopi", Price: decimal.RequireFromString("25000.50")}
	require.NoError(t, products.Create(ctx, p))
	for i := 0; i < 2; i++ {
		require.NoError(t, shipments.Create(ctx, &models.Shipment{ProductID: p.ID, Address: "Jl. Merdeka 1", Status: models.StatusPending}))
	}

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "25000.50", got.Price.StringFixed(2))

	res, err := products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Shipments)

	left, err := shipments.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}
