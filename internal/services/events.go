package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routing keys of the domain events published on the events exchange.
const (
	EventProductDeleted        = "product.deleted"
	EventShipmentCreated       = "shipping.created"
	EventShipmentStatusUpdated = "shipping.status_updated"
)

// EventPublisher sends an encoded event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Event is the envelope of every published message.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type ProductDeletedPayload struct {
	ProductID        uint  `json:"product_id"`
	DeletedShipments int64 `json:"deleted_shipments"`
}

type ShipmentEventPayload struct {
	ShipmentID uint   `json:"shipment_id"`
	ProductID  uint   `json:"product_id"`
	Status     string `json:"status"`
}

// NewEvent wraps payload in an envelope with a fresh id.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// publishEvent never fails the caller: a missing publisher skips, errors are logged.
func publishEvent(ctx context.Context, pub EventPublisher, lg *zap.SugaredLogger, eventType string, payload interface{}) {
	if pub == nil {
		lg.Debugw("event publisher not configured, skipping", "event", eventType)
		return
	}
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		lg.Errorw("failed to build event", "event", eventType, "error", err)
		return
	}
	body, err := json.Marshal(evt)
	if err != nil {
		lg.Errorw("failed to marshal event", "event", eventType, "error", err)
		return
	}
	if err := pub.Publish(ctx, eventType, body); err != nil {
		lg.Warnw("failed to publish event", "event", eventType, "id", evt.ID, "error", err)
		return
	}
	lg.Infow("published event", "event", eventType, "id", evt.ID)
}
