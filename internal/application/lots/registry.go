// Package lots implementa el registro de lotes de producción.
package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/application/codegen"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// Registry crea lotes de producción: valida formato y vencimiento, asigna la
// secuencia bajo el lock de producción y confirma lote + códigos + historial
// en una sola transacción.
type Registry struct {
	tx       repository.TxRunner
	locks    lock.Manager
	orgs     repository.OrganizationRepository
	products repository.ProductRepository
	gen      *codegen.Generator
	rules    rules.Rules
	log      *logger.Logger
	now      func() time.Time
}

// New construye el registro de lotes. now nil usa time.Now.
func New(
	tx repository.TxRunner,
	locks lock.Manager,
	orgs repository.OrganizationRepository,
	products repository.ProductRepository,
	r rules.Rules,
	log *logger.Logger,
	now func() time.Time,
) *Registry {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		tx:       tx,
		locks:    locks,
		orgs:     orgs,
		products: products,
		gen:      codegen.New(r.CodeLength),
		rules:    r,
		log:      log,
		now:      now,
	}
}

// CreateLotInput entrada para crear un lote de producción.
type CreateLotInput struct {
	ManufacturerID  string
	ProductID       string
	Quantity        int
	ManufactureDate time.Time
	ExpiryDate      time.Time
}

// CreateLot crea el lote y sus códigos virtuales, todos IN_STOCK propiedad del
// fabricante (los lotes se producen directo al stock propio), y registra una
// entrada LOT_PRODUCTION con la cantidad y dirección IN.
//
// El conflicto de secuencia se reintenta internamente un número acotado de
// veces antes de aflorar como ErrSequenceConflict; el reintento es seguro
// porque la transacción fallida no deja mutación parcial.
func (r *Registry) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	manufacturer, err := r.validate(in)
	if err != nil {
		return nil, err
	}

	prefix := manufacturer.LotPrefix
	if prefix == "" {
		prefix = r.rules.DefaultLotPrefix
	}

	// Lock de producción por (fabricante, fecha) para que dos producciones
	// concurrentes no dupliquen el número de lote.
	day := in.ManufactureDate.Format("20060102")
	release, err := r.locks.Acquire(ctx, lock.Key{
		Domain: lock.DomainLotProduction,
		A:      in.ManufacturerID,
		B:      day,
	}, r.rules.Locks.LotProduction)
	if err != nil {
		return nil, err
	}
	defer release()

	var lot *entity.Lot
	for attempt := 1; attempt <= r.rules.Locks.MaxAttempts; attempt++ {
		lot, err = r.createOnce(ctx, in, prefix, day)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrSequenceConflict) {
			return nil, err
		}
		r.log.Warn().Int("attempt", attempt).Str("manufacturer_id", in.ManufacturerID).
			Msg("conflicto de secuencia de lote, reintentando")
		if attempt < r.rules.Locks.MaxAttempts {
			// Backoff exponencial sobre el delay base: d, 2d, 4d, ...
			select {
			case <-time.After(r.rules.Locks.RetryDelay << (attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, err
	}

	r.log.Info().Str("lot_number", lot.LotNumber).Int("quantity", lot.Quantity).
		Str("manufacturer_id", lot.ManufacturerID).Msg("lote producido")
	return lot, nil
}

// validate aplica todas las validaciones previas al lock (fail fast).
func (r *Registry) validate(in CreateLotInput) (*entity.Organization, error) {
	manufacturer, err := r.orgs.GetByID(in.ManufacturerID)
	if err != nil {
		return nil, fmt.Errorf("buscar fabricante: %w", err)
	}
	if manufacturer.Role != entity.RoleManufacturer || !manufacturer.CanOperate() {
		return nil, domain.ErrUnauthorized
	}

	product, err := r.products.GetByID(in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("buscar producto: %w", err)
	}
	if product.ManufacturerID != in.ManufacturerID {
		return nil, domain.ErrUnauthorized
	}
	if product.Status != entity.ProductActive {
		return nil, domain.NewValidationError("el producto está inactivo")
	}

	if in.Quantity < r.rules.MinLotQuantity || in.Quantity > r.rules.MaxLotQuantity {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"la cantidad del lote debe estar entre %d y %d", r.rules.MinLotQuantity, r.rules.MaxLotQuantity))
	}
	if in.ManufactureDate.IsZero() || in.ExpiryDate.IsZero() {
		return nil, domain.NewValidationError("fechas de fabricación y vencimiento requeridas")
	}
	minExpiry := in.ManufactureDate.AddDate(0, 0, r.rules.MinExpiryDays)
	if in.ExpiryDate.Before(minExpiry) {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"el vencimiento debe superar la fecha de fabricación en al menos %d días", r.rules.MinExpiryDays))
	}
	return manufacturer, nil
}

// createOnce ejecuta un intento de creación transaccional.
func (r *Registry) createOnce(ctx context.Context, in CreateLotInput, prefix, day string) (*entity.Lot, error) {
	now := r.now()
	var created entity.Lot

	err := r.tx.Run(ctx, func(reg repository.Registry) error {
		seq, err := reg.Lots.NextSequence(in.ManufacturerID, in.ManufactureDate)
		if err != nil {
			return fmt.Errorf("siguiente secuencia: %w", err)
		}
		lotNumber := fmt.Sprintf("%s-%s-%03d", prefix, day, seq)
		if !rules.ValidLotNumber(lotNumber) {
			return domain.NewValidationError("número de lote con formato inválido: " + lotNumber)
		}
		exists, err := reg.Lots.ExistsLotNumber(in.ManufacturerID, lotNumber)
		if err != nil {
			return fmt.Errorf("verificar número de lote: %w", err)
		}
		if exists {
			return domain.ErrSequenceConflict
		}

		created = entity.Lot{
			ID:              uuid.New().String(),
			ProductID:       in.ProductID,
			ManufacturerID:  in.ManufacturerID,
			LotNumber:       lotNumber,
			Sequence:        seq,
			ManufactureDate: in.ManufactureDate,
			ExpiryDate:      in.ExpiryDate,
			Quantity:        in.Quantity,
			CreatedAt:       now,
		}
		if err := reg.Lots.Create(&created); err != nil {
			return fmt.Errorf("crear lote: %w", err)
		}

		codes, err := r.gen.Generate(reg.Codes, &created, in.Quantity, now)
		if err != nil {
			return err
		}
		if err := reg.Codes.CreateBatch(codes); err != nil {
			return fmt.Errorf("crear códigos virtuales: %w", err)
		}

		return reg.History.Append(&entity.HistoryEntry{
			ID:             uuid.New().String(),
			OrganizationID: in.ManufacturerID,
			Action:         entity.ActionLotProduction,
			Direction:      entity.DirectionIn,
			ProductID:      in.ProductID,
			LotID:          created.ID,
			RefID:          created.ID,
			Quantity:       in.Quantity,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}
