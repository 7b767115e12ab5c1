package coordinator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appledger "github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Dispose marca unidades IN_STOCK del hospital como DISPOSED (terminal,
// irreversible) y registra DISPOSAL por producto. Si algún código no está
// IN_STOCK la operación completa falla con ErrIllegalTransition y no se
// agrega historial.
func (c *Coordinator) Dispose(ctx context.Context, ownerID string, codeIDs []string) (err error) {
	defer func() { c.observe("dispose", err) }()

	owner, err := c.activeOrg(ownerID)
	if err != nil {
		return err
	}
	if owner.Role != entity.RoleHospital {
		return domain.ErrUnauthorized
	}
	if len(codeIDs) == 0 {
		return domain.NewValidationError("se requiere al menos un código a disponer")
	}

	// Lectura previa solo para armar las claves de lock por producto; la
	// verificación autoritativa de estado ocurre dentro de la transacción.
	preview, err := c.reads.Codes.GetByIDs(codeIDs)
	if err != nil {
		return fmt.Errorf("cargar códigos: %w", err)
	}
	if len(preview) != len(codeIDs) {
		return domain.ErrNotFound
	}
	lines := groupByProduct(preview)

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainAllocation, ownerID, lines), c.rules.Locks.Quick)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainAllocation))
		return err
	}
	defer release()

	now := c.now()
	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		codes, err := codesByIDs(reg, codeIDs)
		if err != nil {
			return err
		}
		for i := range codes {
			if codes[i].OwnerID != ownerID {
				return domain.ErrUnauthorized
			}
			if err := appledger.Apply(reg.Codes, &codes[i], entity.CodeDisposed,
				appledger.OwnerUpdate{}, now); err != nil {
				return err
			}
		}
		disposalID := uuid.New().String()
		return appendLineHistory(reg, ownerID, entity.ActionDisposal,
			entity.DirectionInternal, disposalID, groupByProduct(codes), now)
	})
	if err != nil {
		return err
	}

	c.log.Info().Str("owner_id", ownerID).Int("codes", len(codeIDs)).Msg("unidades dispuestas")
	return nil
}
