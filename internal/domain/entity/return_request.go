package entity

import "time"

// Estados de solicitud de devolución. Terminal al aprobar o rechazar.
type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "PENDING"
	ReturnApproved ReturnStatus = "APPROVED"
	ReturnRejected ReturnStatus = "REJECTED"
)

// ReturnRequest es una solicitud de devolución de unidades hacia el eslabón anterior
// de la cadena (hospital → distribuidor, distribuidor → fabricante).
type ReturnRequest struct {
	ID          string
	RequesterID string
	TargetID    string
	Lines       []ProductLine
	CodeIDs     []string
	Reason      string // 5-500 caracteres
	Status      ReturnStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
