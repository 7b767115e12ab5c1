package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia del maestro de productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	ListByManufacturer(manufacturerID string) ([]*entity.Product, error)
	// SetStatus alterna ACTIVE/INACTIVE; única mutación permitida del maestro.
	SetStatus(id string, status entity.ProductStatus) error
}
