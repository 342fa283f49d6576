package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database and migrates tables.
func newTestDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	cfg := config.Config{
		DBDriver:       "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		DBAutoMigrate:  true,
	}
	db, err := database.Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(cfg, db, tables...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t, &models.User{}))

	user := &models.User{Name: "A", Email: "a@x.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byEmail, err = repo.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID, "lookup ignores case")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", byID.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, &models.User{})
	repo := repositories.NewGORMUserRepository(db)

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "hash"}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "a@x.com", Password: "hash"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_EmailTakenByOtherAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t, &models.User{}))

	a := &models.User{Name: "A", Email: "a@x.com", Password: "hash"}
	b := &models.User{Name: "B", Email: "b@x.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	taken, err := repo.EmailTakenByOther(ctx, "a@x.com", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTakenByOther(ctx, "a@x.com", b.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTakenByOther(ctx, "A@x.COM", b.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	a.Name = "Alice"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	err = repo.Update(ctx, &models.User{ID: 999, Name: "X", Email: "x@x.com", Password: "h"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t, &models.Product{}))

	p := &models.Product{Name: "Laptop", Price: decimal.RequireFromString("1200.50"), Description: "High performance laptop"}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	err := repo.Create(ctx, &models.Product{Name: "Laptop", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	p.Name = "Laptop Pro"
	p.Price = decimal.RequireFromString("1500")
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", got.Name)
	assert.True(t, decimal.RequireFromString("1500").Equal(got.Price))

	err = repo.Update(ctx, &models.Product{ID: 999, Name: "Ghost", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProductRepository_DeleteCascadesToShipments(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, &models.Product{}, &models.Shipment{})
	products := repositories.NewGORMProductRepository(db)
	shipments := repositories.NewGORMShipmentRepository(db)

	keep := &models.Product{Name: "Mouse", Price: decimal.NewFromInt(25)}
	gone := &models.Product{Name: "Keyboard", Price: decimal.NewFromInt(75)}
	require.NoError(t, products.Create(ctx, keep))
	require.NoError(t, products.Create(ctx, gone))
	for _, pid := range []uint{gone.ID, gone.ID, keep.ID} {
		require.NoError(t, shipments.Create(ctx, &models.Shipment{ProductID: pid, Address: "Jl. Merdeka 1", Status: models.StatusPending}))
	}

	res, err := products.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Products)
	assert.Equal(t, int64(2), res.Shipments)

	left, err := shipments.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ProductID)
}

func TestProductRepository_DeleteWithoutShippingTable(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t, &models.Product{}))

	p := &models.Product{Name: "Monitor", Price: decimal.NewFromInt(200)}
	require.NoError(t, repo.Create(ctx, p))

	res, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Products)
	assert.Zero(t, res.Shipments)
}

func TestProductRepository_DeleteMissingRollsBackCascade(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, &models.Product{}, &models.Shipment{})
	products := repositories.NewGORMProductRepository(db)
	shipments := repositories.NewGORMShipmentRepository(db)

	// An orphan shipment pointing at a product id that does not exist.
	require.NoError(t, shipments.Create(ctx, &models.Shipment{ProductID: 77, Address: "Jl. Sudirman", Status: models.StatusPending}))

	_, err := products.Delete(ctx, 77)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	left, err := shipments.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestShipmentRepository_StatusAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMShipmentRepository(newTestDB(t, &models.Shipment{}))

	s := &models.Shipment{ProductID: 1, Address: "Jl. Asia Afrika", Status: models.StatusPending}
	require.NoError(t, repo.Create(ctx, s))
	require.NotNil(t, s.CreatedAt)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.UpdateStatus(ctx, s.ID, models.StatusDikirim))
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDikirim, got.Status)

	err = repo.UpdateStatus(ctx, 999, models.StatusTerkirim)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	n, err := repo.DeleteByProductID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByProductID(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
