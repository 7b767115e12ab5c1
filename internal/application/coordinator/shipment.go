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

// CreateShipmentInput entrada para crear un embarque.
type CreateShipmentInput struct {
	SenderID   string
	ReceiverID string
	Lines      []entity.ProductLine
}

// CreateShipment asigna códigos por FIFO para cada línea, los marca PENDING con
// destino el receptor, crea la transacción de embarque en PENDING y registra
// SHIPMENT_OUT para el remitente. Todo bajo los locks de embarque
// (remitente, producto) para que dos creaciones concurrentes no seleccionen
// códigos solapados.
func (c *Coordinator) CreateShipment(ctx context.Context, in CreateShipmentInput) (shipment *entity.Shipment, err error) {
	defer func() { c.observe("createShipment", err) }()

	// Validaciones antes de cualquier lock (fail fast, sin contención inútil).
	sender, err := c.activeOrg(in.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := c.activeOrg(in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !c.rules.ShipmentAllowed(sender.Role, receiver.Role) {
		return nil, fmt.Errorf("embarque %s → %s: %w", sender.Role, receiver.Role, domain.ErrUnauthorized)
	}
	if err = c.validateLines(in.Lines, c.rules.MinShipmentQuantity, c.rules.MaxShipmentQuantity); err != nil {
		return nil, err
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainShipment, in.SenderID, in.Lines), c.rules.Locks.Shipment)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainShipment))
		return nil, err
	}
	defer release()

	now := c.now()
	created := entity.Shipment{
		ID:         uuid.New().String(),
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Lines:      in.Lines,
		Status:     entity.ShipmentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		for _, ln := range in.Lines {
			codes, err := allocation.Allocate(reg.Codes, in.SenderID, ln.ProductID, ln.Quantity)
			if err != nil {
				return err
			}
			for i := range codes {
				// PENDING: el código sigue siendo del remitente pero deja de
				// contar en su stock; el destino queda en pending.
				if err := appledger.Apply(reg.Codes, &codes[i], entity.CodePending,
					appledger.OwnerUpdate{PendingOwnerID: in.ReceiverID}, now); err != nil {
					return err
				}
				created.CodeIDs = append(created.CodeIDs, codes[i].ID)
			}
		}
		if err := reg.Shipments.Create(&created); err != nil {
			return fmt.Errorf("crear embarque: %w", err)
		}
		return appendLineHistory(reg, in.SenderID, entity.ActionShipmentOut,
			entity.DirectionOut, created.ID, in.Lines, now)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("shipment_id", created.ID).Str("sender_id", in.SenderID).
		Str("receiver_id", in.ReceiverID).Int("codes", len(created.CodeIDs)).
		Msg("embarque creado")
	return &created, nil
}

// AcceptShipment confirma la recepción: los códigos pasan a IN_STOCK del
// receptor, se limpia el destino pendiente y la transacción queda COMPLETED.
// Falla con ErrAlreadyResolved si la transacción no está PENDING; en ese caso
// el ledger no se toca.
func (c *Coordinator) AcceptShipment(ctx context.Context, actorID, shipmentID string) (shipment *entity.Shipment, err error) {
	defer func() { c.observe("acceptShipment", err) }()
	return c.resolveShipment(ctx, actorID, shipmentID, true)
}

// RejectShipment devuelve las unidades al remitente: los códigos vuelven a
// IN_STOCK con el propietario original y la transacción queda REJECTED.
func (c *Coordinator) RejectShipment(ctx context.Context, actorID, shipmentID string) (shipment *entity.Shipment, err error) {
	defer func() { c.observe("rejectShipment", err) }()
	return c.resolveShipment(ctx, actorID, shipmentID, false)
}

func (c *Coordinator) resolveShipment(ctx context.Context, actorID, shipmentID string, accept bool) (*entity.Shipment, error) {
	if _, err := c.activeOrg(actorID); err != nil {
		return nil, err
	}
	current, err := c.reads.Shipments.GetByID(shipmentID)
	if err != nil {
		return nil, fmt.Errorf("buscar embarque: %w", err)
	}
	// Solo el receptor resuelve un embarque.
	if current.ReceiverID != actorID {
		return nil, domain.ErrUnauthorized
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainShipment, current.SenderID, current.Lines), c.rules.Locks.Quick)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainShipment))
		return nil, err
	}
	defer release()

	now := c.now()
	var resolved entity.Shipment

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		sh, err := reg.Shipments.GetByID(shipmentID)
		if err != nil {
			return fmt.Errorf("buscar embarque: %w", err)
		}
		if sh.Status != entity.ShipmentPending {
			return domain.ErrAlreadyResolved
		}
		codes, err := codesByIDs(reg, sh.CodeIDs)
		if err != nil {
			return err
		}
		for i := range codes {
			var up appledger.OwnerUpdate
			if accept {
				up = appledger.OwnerUpdate{
					NewOwnerID:      sh.ReceiverID,
					PreviousOwnerID: sh.SenderID,
					ClearPending:    true,
				}
			} else {
				// Rechazo: la unidad vuelve al stock del remitente; queda
				// registrado quién la rebotó.
				up = appledger.OwnerUpdate{
					NewOwnerID:      sh.SenderID,
					PreviousOwnerID: sh.ReceiverID,
					ClearPending:    true,
				}
			}
			if err := appledger.Apply(reg.Codes, &codes[i], entity.CodeInStock, up, now); err != nil {
				return err
			}
		}
		if accept {
			sh.Status = entity.ShipmentCompleted
		} else {
			sh.Status = entity.ShipmentRejected
		}
		sh.UpdatedAt = now
		if err := reg.Shipments.UpdateStatus(sh); err != nil {
			return fmt.Errorf("actualizar embarque: %w", err)
		}

		// SHIPMENT_IN para el receptor al aceptar; entrada de reversa para el
		// remitente al rechazar (el inventario regresa al origen).
		historyOrg := sh.ReceiverID
		if !accept {
			historyOrg = sh.SenderID
		}
		if err := appendLineHistory(reg, historyOrg, entity.ActionShipmentIn,
			entity.DirectionIn, sh.ID, sh.Lines, now); err != nil {
			return err
		}
		resolved = *sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("shipment_id", resolved.ID).Bool("accepted", accept).Msg("embarque resuelto")
	return &resolved, nil
}
