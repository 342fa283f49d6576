package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"

	"gorm.io/gorm"
)

// GORMShipmentRepository is a GORM implementation of ShipmentRepository.
type GORMShipmentRepository struct {
	db *gorm.DB
}

func NewGORMShipmentRepository(db *gorm.DB) *GORMShipmentRepository {
	return &GORMShipmentRepository{db: db}
}

func (r *GORMShipmentRepository) GetAll(ctx context.Context) ([]models.Shipment, error) {
	shipments := []models.Shipment{}
	if err := r.db.WithContext(ctx).Order("id").Find(&shipments).Error; err != nil {
		return nil, fmt.Errorf("failed to get all shipments: %w", err)
	}
	return shipments, nil
}

func (r *GORMShipmentRepository) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Shipment not found")
		}
		return nil, fmt.Errorf("failed to get shipment by ID %d: %w", id, err)
	}
	return &shipment, nil
}

func (r *GORMShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

// UpdateStatus sets the status; updated_at is maintained by gorm.
func (r *GORMShipmentRepository) UpdateStatus(ctx context.Context, id uint, status models.ShipmentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Shipment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of shipment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Shipment not found")
	}
	return nil
}

func (r *GORMShipmentRepository) DeleteByProductID(ctx context.Context, productID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.Shipment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete shipments of product %d: %w", productID, res.Error)
	}
	return res.RowsAffected, nil
}
