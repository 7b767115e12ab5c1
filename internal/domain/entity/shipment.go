package entity

import "time"

// Estados de embarque. PENDING es el único estado no terminal:
// un embarque aceptado o rechazado nunca se reabre.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "PENDING"
	ShipmentCompleted ShipmentStatus = "COMPLETED"
	ShipmentRejected  ShipmentStatus = "REJECTED"
)

// Shipment es una transacción de embarque entre dos organizaciones.
// Los códigos asignados se resuelven en la creación y quedan fijos.
type Shipment struct {
	ID         string
	SenderID   string
	ReceiverID string
	Lines      []ProductLine
	CodeIDs    []string // códigos virtuales asignados por FIFO en la creación
	Status     ShipmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
