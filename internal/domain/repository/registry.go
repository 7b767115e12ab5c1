package repository

import "context"

// Registry agrupa los repositorios que participan en una transacción del motor.
// Dentro de TxRunner.Run todos quedan atados a la misma transacción.
type Registry struct {
	Organizations OrganizationRepository
	Products      ProductRepository
	Lots          LotRepository
	Codes         VirtualCodeRepository
	Shipments     ShipmentRepository
	Treatments    TreatmentRepository
	Returns       ReturnRepository
	History       HistoryRepository
}

// TxRunner ejecuta un callback dentro de una transacción: Commit si fn retorna
// nil, Rollback en caso contrario. Ninguna mutación parcial es observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Registry) error) error
}
