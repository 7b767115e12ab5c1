package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// OrganizationRepository define el puerto de lectura de organizaciones.
// El alta/aprobación de organizaciones vive en un sistema externo; el motor
// solo necesita rol y estado para autorizar operaciones.
type OrganizationRepository interface {
	GetByID(id string) (*entity.Organization, error)
}
