// Package ledger es el dueño autoritativo del par estado/propietario de cada
// código virtual. Las lecturas están abiertas a cualquier componente; las
// escrituras pasan por Apply siempre dentro de una transacción del coordinador
// y validan el grafo de transiciones.
package ledger

import (
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Ledger expone las consultas de inventario sobre el repositorio de códigos.
type Ledger struct {
	codes repository.VirtualCodeRepository
}

// New construye el ledger de lecturas.
func New(codes repository.VirtualCodeRepository) *Ledger {
	return &Ledger{codes: codes}
}

// CountByStatus retorna el conteo de códigos de (propietario, producto, estado).
func (l *Ledger) CountByStatus(ownerID, productID string, status entity.CodeStatus) (int, error) {
	return l.codes.CountByStatus(ownerID, productID, status)
}

// ListCodes retorna los códigos de (propietario, producto, estado) en orden FIFO.
func (l *Ledger) ListCodes(ownerID, productID string, status entity.CodeStatus) ([]entity.VirtualCode, error) {
	out, err := l.codes.ListByStatus(ownerID, productID, status)
	if err != nil {
		return nil, err
	}
	entity.SortFIFO(out)
	return out, nil
}

// OwnerUpdate describe la mutación de propietarios que acompaña un cambio de estado.
type OwnerUpdate struct {
	NewOwnerID      string // nuevo propietario; vacío = sin cambio
	PreviousOwnerID string // propietario anterior a registrar; vacío = sin cambio
	PendingOwnerID  string // destino pendiente a fijar (entrada a PENDING)
	ClearPending    bool   // limpia el destino pendiente (salida de PENDING)
}

// Apply muta un código dentro de una transacción validando el grafo de
// transiciones. Cualquier transición fuera del grafo falla con
// ErrIllegalTransition sin tocar el código.
func Apply(codes repository.VirtualCodeRepository, c *entity.VirtualCode, to entity.CodeStatus, up OwnerUpdate, now time.Time) error {
	if !c.Status.CanTransition(to) {
		return fmt.Errorf("código %s: %s → %s: %w", c.Code, c.Status, to, domain.ErrIllegalTransition)
	}
	c.Status = to
	if up.NewOwnerID != "" {
		c.OwnerID = up.NewOwnerID
	}
	if up.PreviousOwnerID != "" {
		c.PreviousOwnerID = up.PreviousOwnerID
	}
	if up.PendingOwnerID != "" {
		c.PendingOwnerID = up.PendingOwnerID
	}
	if up.ClearPending {
		c.PendingOwnerID = ""
	}
	c.UpdatedAt = now
	return codes.UpdateStatus(c)
}
