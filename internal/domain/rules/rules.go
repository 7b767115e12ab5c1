// Package rules concentra las reglas de negocio del motor como configuración
// inmutable: matrices de transición por rol, umbrales numéricos y política de
// locks. Se carga una vez al arrancar y se pasa explícitamente al coordinador;
// nada la referencia como global ambiental.
package rules

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// roleEdge es una arista permitida (origen → destino) en una matriz de roles.
type roleEdge struct {
	From entity.Role
	To   entity.Role
}

// LockPolicy son los presupuestos de espera y la política de reintento de los
// locks de concurrencia. El lock de embarque tiene presupuesto mayor porque la
// transacción toca muchas filas.
type LockPolicy struct {
	Shipment      time.Duration
	LotProduction time.Duration
	Quick         time.Duration
	Default       time.Duration
	MaxAttempts   int           // reintentos internos acotados (secuencia de lote)
	RetryDelay    time.Duration // delay base, backoff exponencial
}

// Rules es la configuración de negocio del motor.
type Rules struct {
	// Códigos virtuales
	CodeLength int

	// Lotes
	DefaultLotPrefix string
	MinLotQuantity   int
	MaxLotQuantity   int
	MinExpiryDays    int // la fecha de vencimiento debe superar la de fabricación en al menos estos días
	ExpiryWarning    int // días de anticipación para la alerta de vencimiento

	// Embarques
	MinShipmentQuantity int
	MaxShipmentQuantity int

	// Tratamientos
	MinTreatmentQuantity int
	MaxTreatmentQuantity int

	// Devoluciones
	MinReasonLength int
	MaxReasonLength int

	// Recall
	RecallWindow time.Duration

	Locks LockPolicy

	shipmentEdges map[roleEdge]bool
	returnEdges   map[roleEdge]bool
}

// Default retorna las reglas con los valores de referencia del negocio.
func Default() Rules {
	return Rules{
		CodeLength:           12,
		DefaultLotPrefix:     "ND",
		MinLotQuantity:       1,
		MaxLotQuantity:       1_000_000,
		MinExpiryDays:        30,
		ExpiryWarning:        30,
		MinShipmentQuantity:  1,
		MaxShipmentQuantity:  100_000,
		MinTreatmentQuantity: 1,
		MaxTreatmentQuantity: 100,
		MinReasonLength:      5,
		MaxReasonLength:      500,
		RecallWindow:         24 * time.Hour,
		Locks: LockPolicy{
			Shipment:      10 * time.Second,
			LotProduction: 5 * time.Second,
			Quick:         2 * time.Second,
			Default:       5 * time.Second,
			MaxAttempts:   3,
			RetryDelay:    time.Second,
		},
		shipmentEdges: map[roleEdge]bool{
			{entity.RoleManufacturer, entity.RoleDistributor}: true,
			{entity.RoleDistributor, entity.RoleHospital}:     true,
			// Distribución multinivel
			{entity.RoleDistributor, entity.RoleDistributor}: true,
			// HOSPITAL → DISTRIBUTOR va por el flujo de devoluciones, no por embarque
		},
		returnEdges: map[roleEdge]bool{
			{entity.RoleDistributor, entity.RoleManufacturer}: true,
			{entity.RoleHospital, entity.RoleDistributor}:     true,
		},
	}
}

// ShipmentAllowed indica si la matriz permite embarcar de from hacia to.
func (r Rules) ShipmentAllowed(from, to entity.Role) bool {
	return r.shipmentEdges[roleEdge{from, to}]
}

// ReturnAllowed indica si la matriz permite devolver de from hacia to.
func (r Rules) ReturnAllowed(from, to entity.Role) bool {
	return r.returnEdges[roleEdge{from, to}]
}

// RecallDeadline retorna el instante límite para el recall de un tratamiento.
// La ventana se computa desde la fecha de tratamiento, no desde la creación del código.
func (r Rules) RecallDeadline(treatedAt time.Time) time.Time {
	return treatedAt.Add(r.RecallWindow)
}
