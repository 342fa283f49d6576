package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products ordered by id.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict(fmt.Sprintf("Product %q already exists", product.Name))
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites name, price and description of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"price":       product.Price,
			"description": product.Description,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict(fmt.Sprintf("Product %q already exists", product.Name))
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Product not found")
	}
	return nil
}

// Delete removes dependent shipments and then the product. The shipping table
// belongs to another service and may not exist yet, so it is probed first.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) (DeleteResult, error) {
	var result DeleteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		migrator := tx.Migrator()
		if migrator.HasTable(models.ShipmentTable) && migrator.HasColumn(models.ShipmentTable, "product_id") {
			res := tx.Exec("DELETE FROM "+models.ShipmentTable+" WHERE product_id = ?", id)
			if res.Error != nil {
				return fmt.Errorf("failed to delete shipments of product %d: %w", id, res.Error)
			}
			result.Shipments = res.RowsAffected
		}

		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Product not found")
		}
		result.Products = res.RowsAffected
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}
