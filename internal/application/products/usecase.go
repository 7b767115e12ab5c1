// Package products gestiona el maestro de productos de un fabricante.
package products

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
)

// UseCase operaciones del maestro de productos. Un producto es inmutable una
// vez referenciado por un lote, salvo el toggle de estado por su fabricante.
type UseCase struct {
	orgs     repository.OrganizationRepository
	products repository.ProductRepository
	now      func() time.Time
}

// New construye el caso de uso. now nil usa time.Now.
func New(orgs repository.OrganizationRepository, products repository.ProductRepository, now func() time.Time) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{orgs: orgs, products: products, now: now}
}

// Create registra un producto del fabricante. El código debe ser alfanumérico
// de 6 a 20 caracteres en mayúscula.
func (uc *UseCase) Create(manufacturerID, name, code string) (*entity.Product, error) {
	org, err := uc.orgs.GetByID(manufacturerID)
	if err != nil {
		return nil, fmt.Errorf("buscar fabricante: %w", err)
	}
	if org.Role != entity.RoleManufacturer || !org.CanOperate() {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return nil, domain.NewValidationError("el nombre del producto debe tener entre 2 y 100 caracteres")
	}
	if !rules.ValidProductCode(code) {
		return nil, domain.NewValidationError("código de producto inválido (alfanumérico, 6-20 caracteres)")
	}

	now := uc.now()
	p := &entity.Product{
		ID:             uuid.New().String(),
		ManufacturerID: manufacturerID,
		Name:           name,
		Code:           code,
		Status:         entity.ProductActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.products.Create(p); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	return p, nil
}

// SetStatus alterna el estado del producto. Solo el fabricante propietario.
func (uc *UseCase) SetStatus(manufacturerID, productID string, status entity.ProductStatus) error {
	if status != entity.ProductActive && status != entity.ProductInactive {
		return domain.NewValidationError("estado de producto inválido")
	}
	p, err := uc.products.GetByID(productID)
	if err != nil {
		return fmt.Errorf("buscar producto: %w", err)
	}
	if p.ManufacturerID != manufacturerID {
		return domain.ErrUnauthorized
	}
	return uc.products.SetStatus(productID, status)
}

// ListByManufacturer lista los productos del fabricante.
func (uc *UseCase) ListByManufacturer(manufacturerID string) ([]*entity.Product, error) {
	return uc.products.ListByManufacturer(manufacturerID)
}
