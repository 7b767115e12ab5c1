package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// ReturnRepository define el puerto de persistencia de solicitudes de devolución.
type ReturnRepository interface {
	Create(request *entity.ReturnRequest) error
	GetByID(id string) (*entity.ReturnRequest, error)
	UpdateStatus(request *entity.ReturnRequest) error
}
