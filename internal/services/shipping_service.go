package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"

	"go.uber.org/zap"
)

// ErrInvalidStatus is returned for a status outside models.ShipmentStatuses.
var ErrInvalidStatus = apperrors.Validation("Invalid status")

// ShippingService handles business logic related to shipments.
type ShippingService struct {
	repo      repositories.ShipmentRepository
	publisher EventPublisher
	lg        *zap.SugaredLogger
	now       func() time.Time
}

// NewShippingService creates a new ShippingService. publisher may be nil.
func NewShippingService(repo repositories.ShipmentRepository, publisher EventPublisher, lg *zap.SugaredLogger) *ShippingService {
	return &ShippingService{
		repo:      repo,
		publisher: publisher,
		lg:        lg,
		now:       time.Now,
	}
}

// ShipmentInput is the payload of a new shipment.
type ShipmentInput struct {
	ProductID uint
	Address   string
	Status    string
}

// ParseStatus validates status; an empty value means the default.
func ParseStatus(status string, allowEmpty bool) (models.ShipmentStatus, error) {
	status = strings.TrimSpace(status)
	if status == "" && allowEmpty {
		return models.DefaultStatus, nil
	}
	s := models.ShipmentStatus(status)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// GetAllShipments lists every shipment with missing timestamps backfilled.
func (s *ShippingService) GetAllShipments(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range shipments {
		shipments[i].Backfill(now)
	}
	return shipments, nil
}

func (s *ShippingService) GetShipmentByID(ctx context.Context, id uint) (*models.Shipment, error) {
	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shipment.Backfill(s.now())
	return shipment, nil
}

// CreateShipment validates in and stores a new shipment.
func (s *ShippingService) CreateShipment(ctx context.Context, in ShipmentInput) (*models.Shipment, error) {
	status, err := ParseStatus(in.Status, true)
	if err != nil {
		return nil, err
	}
	if in.ProductID == 0 {
		return nil, apperrors.Validation("Product ID is required")
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, apperrors.Validation("Address is required")
	}

	shipment := &models.Shipment{ProductID: in.ProductID, Address: address, Status: status}
	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, s.lg, EventShipmentCreated, ShipmentEventPayload{
		ShipmentID: shipment.ID,
		ProductID:  shipment.ProductID,
		Status:     string(shipment.Status),
	})
	return shipment, nil
}

// UpdateShipmentStatus changes the status and returns the re-read row.
func (s *ShippingService) UpdateShipmentStatus(ctx context.Context, id uint, status string) (*models.Shipment, error) {
	st, err := ParseStatus(status, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}

	shipment, err := s.GetShipmentByID(ctx, id)
	if err != nil {
		s.lg.Warnw("failed to re-read shipment after status update", "id", id, "error", err)
		shipment = &models.Shipment{ID: id, Status: st}
		shipment.Backfill(s.now())
	}
	publishEvent(ctx, s.publisher, s.lg, EventShipmentStatusUpdated, ShipmentEventPayload{
		ShipmentID: id,
		ProductID:  shipment.ProductID,
		Status:     string(st),
	})
	return shipment, nil
}

// PurgeProduct removes shipments still referencing a deleted product.
func (s *ShippingService) PurgeProduct(ctx context.Context, productID uint) (int64, error) {
	n, err := s.repo.DeleteByProductID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.lg.Infow("purged shipments of deleted product", "product_id", productID, "count", n)
	}
	return n, nil
}

// HandleEvent consumes an encoded Event. Unknown event types are ignored.
func (s *ShippingService) HandleEvent(ctx context.Context, body []byte) error {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	switch evt.Type {
	case EventProductDeleted:
		var p ProductDeletedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		_, err := s.PurgeProduct(ctx, p.ProductID)
		return err
	default:
		s.lg.Debugw("ignoring event", "type", evt.Type, "id", evt.ID)
		return nil
	}
}
