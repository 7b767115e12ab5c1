package entity

import "time"

// Tipos de acción de la trazabilidad.
type ActionType string

const (
	ActionLotProduction ActionType = "LOT_PRODUCTION"
	ActionShipmentOut   ActionType = "SHIPMENT_OUT"
	ActionShipmentIn    ActionType = "SHIPMENT_IN"
	ActionTreatment     ActionType = "TREATMENT"
	ActionRecall        ActionType = "RECALL"
	ActionReturnOut     ActionType = "RETURN_OUT"
	ActionReturnIn      ActionType = "RETURN_IN"
	ActionDisposal      ActionType = "DISPOSAL"
	ActionRejection     ActionType = "REJECTION"
)

// Dirección del movimiento desde la perspectiva de la organización.
type Direction string

const (
	DirectionIn       Direction = "IN"
	DirectionOut      Direction = "OUT"
	DirectionInternal Direction = "INTERNAL"
)

// HistoryEntry es una entrada del historial de auditoría.
// Append-only: una vez escrita nunca se actualiza ni se borra.
// El historial reconstruye cada mutación del ledger para trazabilidad regulatoria.
type HistoryEntry struct {
	ID             string
	OrganizationID string
	Action         ActionType
	Direction      Direction
	ProductID      string
	LotID          string // solo para LOT_PRODUCTION
	RefID          string // id del embarque, tratamiento, devolución o lote asociado
	Quantity       int
	CreatedAt      time.Time
}
