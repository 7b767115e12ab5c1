package repository

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes de producción.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	// NextSequence retorna la siguiente secuencia libre para (fabricante, día).
	// Se invoca bajo el lock de producción de lote.
	NextSequence(manufacturerID string, date time.Time) (int, error)
	// ExistsLotNumber detecta colisiones de número de lote (conflicto de secuencia).
	ExistsLotNumber(manufacturerID, lotNumber string) (bool, error)
	// ListExpiringBefore retorna los lotes cuyo vencimiento es anterior al corte.
	ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error)
}
