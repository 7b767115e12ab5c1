// Package allocation implementa la asignación FIFO de códigos virtuales.
package allocation

import (
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Allocate selecciona exactamente quantity códigos IN_STOCK de (propietario,
// producto) según la clave FIFO total, todo-o-nada: con stock insuficiente
// retorna ErrInsufficientStock sin asignación parcial.
//
// La selección no muta estado; el coordinador aplica el cambio de estado en la
// misma transacción, bajo el lock correspondiente, para que dos asignaciones
// concurrentes no puedan seleccionar los mismos códigos.
//
// Determinismo: sobre el mismo snapshot del ledger, dos llamadas retornan el
// mismo conjunto ordenado.
func Allocate(codes repository.VirtualCodeRepository, ownerID, productID string, quantity int) ([]entity.VirtualCode, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("la cantidad a asignar debe ser positiva")
	}
	available, err := codes.ListAvailableFIFO(ownerID, productID)
	if err != nil {
		return nil, fmt.Errorf("listar stock disponible: %w", err)
	}
	// Reordenamos aunque el repositorio ya garantiza el orden: el determinismo
	// de la asignación es propiedad de este componente, no del driver.
	entity.SortFIFO(available)
	if len(available) < quantity {
		return nil, fmt.Errorf("producto %s: disponibles %d, solicitados %d: %w",
			productID, len(available), quantity, domain.ErrInsufficientStock)
	}
	return available[:quantity], nil
}
