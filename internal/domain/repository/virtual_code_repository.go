package repository

import "github.com/jhoicas/Trazabilidad-api/internal/domain/entity"

// VirtualCodeRepository define el puerto de persistencia del ledger de códigos virtuales.
// Las escrituras solo se invocan desde el coordinador de transacciones, dentro
// de una transacción; nada muta un código virtual por fuera de ese camino.
type VirtualCodeRepository interface {
	CreateBatch(codes []entity.VirtualCode) error
	GetByID(id string) (*entity.VirtualCode, error)
	GetByIDs(ids []string) ([]entity.VirtualCode, error)
	// ListAvailableFIFO retorna los códigos IN_STOCK de (propietario, producto)
	// en orden FIFO total: manufacture_date, expiry_date, sequence, created_at.
	ListAvailableFIFO(ownerID, productID string) ([]entity.VirtualCode, error)
	ListByStatus(ownerID, productID string, status entity.CodeStatus) ([]entity.VirtualCode, error)
	CountByStatus(ownerID, productID string, status entity.CodeStatus) (int, error)
	// UpdateStatus persiste estado, propietarios y updated_at de un código.
	UpdateStatus(code *entity.VirtualCode) error
	// ExistsCode indica si el código de 12 caracteres ya existe en el espacio global.
	ExistsCode(code string) (bool, error)
}
