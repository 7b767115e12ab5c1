package coordinator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/application/allocation"
	appledger "github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// RequestReturnInput entrada para solicitar una devolución.
type RequestReturnInput struct {
	RequesterID string
	TargetID    string
	Lines       []entity.ProductLine
	Reason      string
}

// RequestReturn solicita devolver unidades al eslabón anterior: asigna por
// FIFO del stock del solicitante, marca los códigos PENDING (devolución en
// tránsito) con destino el objetivo, crea la solicitud y registra RETURN_OUT.
func (c *Coordinator) RequestReturn(ctx context.Context, in RequestReturnInput) (request *entity.ReturnRequest, err error) {
	defer func() { c.observe("requestReturn", err) }()

	if l := len(in.Reason); l < c.rules.MinReasonLength || l > c.rules.MaxReasonLength {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"la razón debe tener entre %d y %d caracteres", c.rules.MinReasonLength, c.rules.MaxReasonLength))
	}
	requester, err := c.activeOrg(in.RequesterID)
	if err != nil {
		return nil, err
	}
	target, err := c.activeOrg(in.TargetID)
	if err != nil {
		return nil, err
	}
	if !c.rules.ReturnAllowed(requester.Role, target.Role) {
		return nil, fmt.Errorf("devolución %s → %s: %w", requester.Role, target.Role, domain.ErrUnauthorized)
	}
	if err = c.validateLines(in.Lines, 1, c.rules.MaxShipmentQuantity); err != nil {
		return nil, err
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainAllocation, in.RequesterID, in.Lines), c.rules.Locks.Default)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainAllocation))
		return nil, err
	}
	defer release()

	now := c.now()
	created := entity.ReturnRequest{
		ID:          uuid.New().String(),
		RequesterID: in.RequesterID,
		TargetID:    in.TargetID,
		Lines:       in.Lines,
		Reason:      in.Reason,
		Status:      entity.ReturnPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		for _, ln := range in.Lines {
			codes, err := allocation.Allocate(reg.Codes, in.RequesterID, ln.ProductID, ln.Quantity)
			if err != nil {
				return err
			}
			for i := range codes {
				if err := appledger.Apply(reg.Codes, &codes[i], entity.CodePending,
					appledger.OwnerUpdate{PendingOwnerID: in.TargetID}, now); err != nil {
					return err
				}
				created.CodeIDs = append(created.CodeIDs, codes[i].ID)
			}
		}
		if err := reg.Returns.Create(&created); err != nil {
			return fmt.Errorf("crear devolución: %w", err)
		}
		return appendLineHistory(reg, in.RequesterID, entity.ActionReturnOut,
			entity.DirectionOut, created.ID, in.Lines, now)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("return_id", created.ID).Str("requester_id", in.RequesterID).
		Str("target_id", in.TargetID).Msg("devolución solicitada")
	return &created, nil
}

// ResolveReturn resuelve una solicitud de devolución. Al aprobar, los códigos
// pasan a IN_STOCK del objetivo (RETURN_IN); al rechazar vuelven al stock del
// solicitante (REJECTION). Solo el objetivo resuelve; terminal en ambos casos.
func (c *Coordinator) ResolveReturn(ctx context.Context, actorID, returnID string, approve bool) (request *entity.ReturnRequest, err error) {
	defer func() { c.observe("resolveReturn", err) }()

	if _, err = c.activeOrg(actorID); err != nil {
		return nil, err
	}
	current, err := c.reads.Returns.GetByID(returnID)
	if err != nil {
		return nil, fmt.Errorf("buscar devolución: %w", err)
	}
	if current.TargetID != actorID {
		return nil, domain.ErrUnauthorized
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainAllocation, current.TargetID, current.Lines), c.rules.Locks.Quick)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainAllocation))
		return nil, err
	}
	defer release()

	now := c.now()
	var resolved entity.ReturnRequest

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		ret, err := reg.Returns.GetByID(returnID)
		if err != nil {
			return fmt.Errorf("buscar devolución: %w", err)
		}
		if ret.Status != entity.ReturnPending {
			return domain.ErrAlreadyResolved
		}
		codes, err := codesByIDs(reg, ret.CodeIDs)
		if err != nil {
			return err
		}
		for i := range codes {
			var up appledger.OwnerUpdate
			if approve {
				up = appledger.OwnerUpdate{
					NewOwnerID:      ret.TargetID,
					PreviousOwnerID: ret.RequesterID,
					ClearPending:    true,
				}
			} else {
				up = appledger.OwnerUpdate{
					NewOwnerID:      ret.RequesterID,
					PreviousOwnerID: ret.TargetID,
					ClearPending:    true,
				}
			}
			if err := appledger.Apply(reg.Codes, &codes[i], entity.CodeInStock, up, now); err != nil {
				return err
			}
		}
		if approve {
			ret.Status = entity.ReturnApproved
		} else {
			ret.Status = entity.ReturnRejected
		}
		ret.UpdatedAt = now
		if err := reg.Returns.UpdateStatus(ret); err != nil {
			return fmt.Errorf("actualizar devolución: %w", err)
		}

		if approve {
			err = appendLineHistory(reg, ret.TargetID, entity.ActionReturnIn,
				entity.DirectionIn, ret.ID, ret.Lines, now)
		} else {
			err = appendLineHistory(reg, ret.RequesterID, entity.ActionRejection,
				entity.DirectionIn, ret.ID, ret.Lines, now)
		}
		if err != nil {
			return err
		}
		resolved = *ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("return_id", resolved.ID).Bool("approved", approve).Msg("devolución resuelta")
	return &resolved, nil
}
