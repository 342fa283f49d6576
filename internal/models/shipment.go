package models

import "time"

// ShipmentStatus is the delivery state of a shipment.
type ShipmentStatus string

const (
	StatusPending  ShipmentStatus = "pending"
	StatusDikirim  ShipmentStatus = "dikirim"
	StatusTerkirim ShipmentStatus = "terkirim"
)

// DefaultStatus is assigned when a shipment is created without a status.
const DefaultStatus = StatusPending

// ShipmentStatuses lists the accepted statuses in lifecycle order.
var ShipmentStatuses = []ShipmentStatus{StatusPending, StatusDikirim, StatusTerkirim}

// Valid reports whether s is one of ShipmentStatuses.
func (s ShipmentStatus) Valid() bool {
	for _, v := range ShipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Active reports whether the shipment is still on its way.
func (s ShipmentStatus) Active() bool {
	return s == StatusPending || s == StatusDikirim
}

// StatusStrings returns ShipmentStatuses as plain strings for error bodies.
func StatusStrings() []string {
	out := make([]string, len(ShipmentStatuses))
	for i, s := range ShipmentStatuses {
		out[i] = string(s)
	}
	return out
}

// Shipment is a delivery record. ProductID is a weak reference to Product:
// no foreign key is declared.
type Shipment struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint           `json:"product_id" gorm:"index;not null"`
	Address   string         `json:"address" gorm:"type:text;not null"`
	Status    ShipmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt *time.Time     `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at"`
}

// TableName keeps the historical singular table name.
func (Shipment) TableName() string {
	return ShipmentTable
}

// ShipmentTable is the table probed by the product service before a cascade delete.
const ShipmentTable = "shipping"

// Backfill fills missing timestamps with now. The result is never persisted.
func (s *Shipment) Backfill(now time.Time) {
	if s.CreatedAt == nil {
		t := now
		s.CreatedAt = &t
	}
	if s.UpdatedAt == nil {
		t := now
		s.UpdatedAt = &t
	}
}
