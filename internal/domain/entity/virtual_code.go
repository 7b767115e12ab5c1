package entity

import (
	"sort"
	"time"
)

// Estados de código virtual.
type CodeStatus string

const (
	CodePending  CodeStatus = "PENDING"
	CodeInStock  CodeStatus = "IN_STOCK"
	CodeUsed     CodeStatus = "USED"
	CodeReturned CodeStatus = "RETURNED"
	CodeDisposed CodeStatus = "DISPOSED"
	CodeRecalled CodeStatus = "RECALLED"
)

// VirtualCode es el identificador de trazabilidad a nivel de unidad física.
// El código de 12 caracteres es inmutable después de la creación; el par
// estado/propietario solo se muta dentro del coordinador de transacciones.
type VirtualCode struct {
	ID              string
	Code            string // 12 caracteres [A-Z0-9], inmutable
	LotID           string
	ProductID       string // desnormalizado del lote para filtrado rápido
	Sequence        int    // secuencia dentro del lote, clave terciaria FIFO
	OwnerID         string
	PreviousOwnerID string // propietario anterior; se llena en transferencia o rechazo
	PendingOwnerID  string // destino pendiente mientras un embarque/devolución está en tránsito
	Status          CodeStatus
	ManufactureDate time.Time // desnormalizado del lote, clave primaria FIFO
	ExpiryDate      time.Time // desnormalizado del lote, clave secundaria FIFO
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// transitions es el grafo dirigido de transiciones válidas.
// PENDING cubre tanto "embarque en tránsito" como "devolución en tránsito";
// el registro padre abierto (embarque o devolución) desambigua el contexto.
// DISPOSED y RECALLED son terminales: no tienen salidas.
var transitions = map[CodeStatus][]CodeStatus{
	CodePending: {CodeInStock},
	CodeInStock: {CodePending, CodeUsed, CodeDisposed},
	CodeUsed:    {CodeRecalled},
}

// CanTransition indica si la transición from → to está en el grafo.
func (s CodeStatus) CanTransition(to CodeStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones.
func (s CodeStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// FIFOLess compara dos códigos según la clave FIFO total:
// manufacture_date ASC, expiry_date ASC, sequence_number ASC, created_at ASC.
// El orden es total, así que la asignación es determinista.
func FIFOLess(a, b VirtualCode) bool {
	if !a.ManufactureDate.Equal(b.ManufactureDate) {
		return a.ManufactureDate.Before(b.ManufactureDate)
	}
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.Before(b.ExpiryDate)
	}
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortFIFO ordena el slice in-place según la clave FIFO total.
func SortFIFO(codes []VirtualCode) {
	sort.SliceStable(codes, func(i, j int) bool {
		return FIFOLess(codes[i], codes[j])
	})
}
