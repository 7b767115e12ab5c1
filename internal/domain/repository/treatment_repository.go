package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// TreatmentRepository define el puerto de persistencia de tratamientos.
type TreatmentRepository interface {
	Create(treatment *entity.Treatment) error
	GetByID(id string) (*entity.Treatment, error)
	UpdateStatus(treatment *entity.Treatment) error
}
