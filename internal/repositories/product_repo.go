package repositories

import (
	"context"

	"tokoadmin/internal/models"
)

// DeleteResult reports what a product delete removed.
type DeleteResult struct {
	Products  int64
	Shipments int64
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete removes the product and, when the shipping table is present, the
	// shipments that reference it, in one transaction.
	Delete(ctx context.Context, id uint) (DeleteResult, error)
}
