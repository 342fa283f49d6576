package repositories

import (
	"context"

	"tokoadmin/internal/models"
)

// ShipmentRepository defines the interface for shipment data access.
type ShipmentRepository interface {
	GetAll(ctx context.Context) ([]models.Shipment, error)
	GetByID(ctx context.Context, id uint) (*models.Shipment, error)
	Create(ctx context.Context, shipment *models.Shipment) error
	UpdateStatus(ctx context.Context, id uint, status models.ShipmentStatus) error
	DeleteByProductID(ctx context.Context, productID uint) (int64, error)
}
