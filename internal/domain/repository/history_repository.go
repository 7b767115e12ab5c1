package repository

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// HistoryRepository define el puerto del historial de auditoría.
// Append-only: no existe Update ni Delete.
type HistoryRepository interface {
	Append(entry *entity.HistoryEntry) error
	// ListByOrganization retorna las entradas de la organización en [from, to],
	// en orden cronológico. Zero values en from/to desactivan el filtro.
	ListByOrganization(organizationID string, from, to time.Time) ([]entity.HistoryEntry, error)
}
