// Package coordinator ejecuta las operaciones de negocio multi-paso como
// unidades atómicas: adquisición de lock → validación → asignación/búsqueda →
// mutación del ledger → historial → liberación del lock. Cada operación
// confirma completa o revierte completa; ninguna mutación parcial es
// observable por lectores posteriores.
package coordinator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
	"github.com/jhoicas/Trazabilidad-api/pkg/metrics"
)

// Deps dependencias del coordinador.
type Deps struct {
	Reads   repository.Registry // repositorios de lectura fuera de transacción
	Tx      repository.TxRunner
	Locks   lock.Manager
	Rules   rules.Rules
	Log     *logger.Logger
	Metrics *metrics.Metrics // opcional
	Now     func() time.Time // opcional; nil usa time.Now
}

// Coordinator orquesta las operaciones del motor de trazabilidad.
type Coordinator struct {
	reads   repository.Registry
	tx      repository.TxRunner
	locks   lock.Manager
	rules   rules.Rules
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New construye el coordinador.
func New(d Deps) *Coordinator {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &Coordinator{
		reads:   d.Reads,
		tx:      d.Tx,
		locks:   d.Locks,
		rules:   d.Rules,
		log:     d.Log,
		metrics: d.Metrics,
		now:     d.Now,
	}
}

// observe registra la métrica de resultado de una operación.
func (c *Coordinator) observe(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.Operation(action, outcome)
}

// activeOrg busca la organización y verifica que pueda operar.
func (c *Coordinator) activeOrg(id string) (*entity.Organization, error) {
	org, err := c.reads.Organizations.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("buscar organización %s: %w", id, err)
	}
	if !org.CanOperate() {
		return nil, domain.ErrUnauthorized
	}
	return org, nil
}

// lineKeys arma las claves de lock (una por producto) para un conjunto de líneas.
func lineKeys(d lock.Domain, ownerID string, lines []entity.ProductLine) []lock.Key {
	keys := make([]lock.Key, 0, len(lines))
	for _, ln := range lines {
		keys = append(keys, lock.Key{Domain: d, A: ownerID, B: ln.ProductID})
	}
	return keys
}

// validateLines valida la forma de las líneas y que el total esté en [min, max].
func (c *Coordinator) validateLines(lines []entity.ProductLine, min, max int) error {
	if len(lines) == 0 {
		return domain.NewValidationError("se requiere al menos una línea de producto")
	}
	total := 0
	for _, ln := range lines {
		if ln.ProductID == "" {
			return domain.NewValidationError("línea sin producto")
		}
		if ln.Quantity < min {
			return domain.NewValidationError(fmt.Sprintf("la cantidad mínima por línea es %d", min))
		}
		if _, err := c.reads.Products.GetByID(ln.ProductID); err != nil {
			return fmt.Errorf("buscar producto %s: %w", ln.ProductID, err)
		}
		total += ln.Quantity
	}
	if total > max {
		return domain.NewValidationError(fmt.Sprintf("la cantidad total supera el máximo permitido (%d)", max))
	}
	return nil
}

// appendLineHistory agrega una entrada de historial por línea de producto.
func appendLineHistory(
	reg repository.Registry,
	orgID string,
	action entity.ActionType,
	direction entity.Direction,
	refID string,
	lines []entity.ProductLine,
	now time.Time,
) error {
	for _, ln := range lines {
		entry := &entity.HistoryEntry{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			Action:         action,
			Direction:      direction,
			ProductID:      ln.ProductID,
			RefID:          refID,
			Quantity:       ln.Quantity,
			CreatedAt:      now,
		}
		if err := reg.History.Append(entry); err != nil {
			return fmt.Errorf("historial %s: %w", action, err)
		}
	}
	return nil
}

// groupByProduct reconstruye líneas (producto, cantidad) desde un conjunto de códigos.
// El orden sigue la primera aparición de cada producto.
func groupByProduct(codes []entity.VirtualCode) []entity.ProductLine {
	idx := make(map[string]int)
	var lines []entity.ProductLine
	for _, code := range codes {
		if i, ok := idx[code.ProductID]; ok {
			lines[i].Quantity++
			continue
		}
		idx[code.ProductID] = len(lines)
		lines = append(lines, entity.ProductLine{ProductID: code.ProductID, Quantity: 1})
	}
	return lines
}

// codesByIDs carga los códigos referenciados por una transacción.
func codesByIDs(reg repository.Registry, ids []string) ([]entity.VirtualCode, error) {
	codes, err := reg.Codes.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("cargar códigos: %w", err)
	}
	if len(codes) != len(ids) {
		return nil, domain.ErrNotFound
	}
	return codes, nil
}
