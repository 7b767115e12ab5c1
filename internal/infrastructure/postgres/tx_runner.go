package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRegistry construye el registro de repositorios sobre un Querier (pool o tx).
func NewRegistry(q Querier) repository.Registry {
	return repository.Registry{
		Organizations: NewOrganizationRepository(q),
		Products:      NewProductRepository(q),
		Lots:          NewLotRepository(q),
		Codes:         NewVirtualCodeRepository(q),
		Shipments:     NewShipmentRepository(q),
		Treatments:    NewTreatmentRepository(q),
		Returns:       NewReturnRepository(q),
		History:       NewHistoryRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(reg repository.Registry) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRegistry(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
