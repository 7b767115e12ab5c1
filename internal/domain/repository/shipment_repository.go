package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// ShipmentRepository define el puerto de persistencia de embarques.
type ShipmentRepository interface {
	Create(shipment *entity.Shipment) error
	GetByID(id string) (*entity.Shipment, error)
	UpdateStatus(shipment *entity.Shipment) error
}
