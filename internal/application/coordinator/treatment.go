package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Trazabilidad-api/internal/application/allocation"
	appledger "github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// RegisterTreatmentInput entrada para registrar un tratamiento.
type RegisterTreatmentInput struct {
	HospitalID       string
	PatientPhoneHash string
	Lines            []entity.ProductLine
	TreatmentDate    time.Time
}

// RegisterTreatment consume unidades del stock propio del hospital: asigna por
// FIFO, marca los códigos USED, crea el registro de tratamiento y registra
// TREATMENT con dirección INTERNAL.
func (c *Coordinator) RegisterTreatment(ctx context.Context, in RegisterTreatmentInput) (treatment *entity.Treatment, err error) {
	defer func() { c.observe("registerTreatment", err) }()

	hospital, err := c.activeOrg(in.HospitalID)
	if err != nil {
		return nil, err
	}
	if hospital.Role != entity.RoleHospital {
		return nil, domain.ErrUnauthorized
	}
	if in.PatientPhoneHash == "" {
		return nil, domain.NewValidationError("se requiere el identificador del paciente")
	}
	if in.TreatmentDate.IsZero() {
		return nil, domain.NewValidationError("se requiere la fecha de tratamiento")
	}
	if err = c.validateLines(in.Lines, c.rules.MinTreatmentQuantity, c.rules.MaxTreatmentQuantity); err != nil {
		return nil, err
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainAllocation, in.HospitalID, in.Lines), c.rules.Locks.Default)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainAllocation))
		return nil, err
	}
	defer release()

	now := c.now()
	created := entity.Treatment{
		ID:               uuid.New().String(),
		HospitalID:       in.HospitalID,
		PatientPhoneHash: in.PatientPhoneHash,
		Lines:            in.Lines,
		TreatmentDate:    in.TreatmentDate,
		Status:           entity.TreatmentCompleted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		for _, ln := range in.Lines {
			codes, err := allocation.Allocate(reg.Codes, in.HospitalID, ln.ProductID, ln.Quantity)
			if err != nil {
				return err
			}
			for i := range codes {
				if err := appledger.Apply(reg.Codes, &codes[i], entity.CodeUsed,
					appledger.OwnerUpdate{}, now); err != nil {
					return err
				}
				created.CodeIDs = append(created.CodeIDs, codes[i].ID)
			}
		}
		if err := reg.Treatments.Create(&created); err != nil {
			return fmt.Errorf("crear tratamiento: %w", err)
		}
		return appendLineHistory(reg, in.HospitalID, entity.ActionTreatment,
			entity.DirectionInternal, created.ID, in.Lines, now)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("treatment_id", created.ID).Str("hospital_id", in.HospitalID).
		Int("codes", len(created.CodeIDs)).Msg("tratamiento registrado")
	return &created, nil
}

// Recall revierte un tratamiento dentro de la ventana de recall: los códigos
// USED pasan a RECALLED (terminal) y el tratamiento queda RECALLED. La ventana
// se computa desde la fecha de tratamiento. Solo el hospital que registró el
// tratamiento puede ejecutarlo.
func (c *Coordinator) Recall(ctx context.Context, actorID, treatmentID, reason string) (treatment *entity.Treatment, err error) {
	defer func() { c.observe("recall", err) }()

	actor, err := c.activeOrg(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != entity.RoleHospital {
		return nil, domain.ErrUnauthorized
	}
	if l := len(reason); l < c.rules.MinReasonLength || l > c.rules.MaxReasonLength {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"la razón debe tener entre %d y %d caracteres", c.rules.MinReasonLength, c.rules.MaxReasonLength))
	}
	current, err := c.reads.Treatments.GetByID(treatmentID)
	if err != nil {
		return nil, fmt.Errorf("buscar tratamiento: %w", err)
	}
	if current.HospitalID != actorID {
		return nil, domain.ErrUnauthorized
	}
	// Elegibilidad temporal: fail fast antes de tomar locks. La verificación
	// definitiva se repite dentro de la transacción con el mismo reloj.
	if c.now().After(c.rules.RecallDeadline(current.TreatmentDate)) {
		return nil, domain.ErrRecallWindowExpired
	}

	release, err := c.locks.AcquireAll(ctx,
		lineKeys(lock.DomainAllocation, actorID, current.Lines), c.rules.Locks.Quick)
	if err != nil {
		c.metrics.LockTimeout(string(lock.DomainAllocation))
		return nil, err
	}
	defer release()

	now := c.now()
	var recalled entity.Treatment

	err = c.tx.Run(ctx, func(reg repository.Registry) error {
		tr, err := reg.Treatments.GetByID(treatmentID)
		if err != nil {
			return fmt.Errorf("buscar tratamiento: %w", err)
		}
		if tr.Status != entity.TreatmentCompleted {
			return domain.ErrInvalidStatusForRecall
		}
		if now.After(c.rules.RecallDeadline(tr.TreatmentDate)) {
			return domain.ErrRecallWindowExpired
		}
		codes, err := codesByIDs(reg, tr.CodeIDs)
		if err != nil {
			return err
		}
		for i := range codes {
			if codes[i].Status != entity.CodeUsed {
				return domain.ErrInvalidStatusForRecall
			}
			if err := appledger.Apply(reg.Codes, &codes[i], entity.CodeRecalled,
				appledger.OwnerUpdate{}, now); err != nil {
				return err
			}
		}
		tr.Status = entity.TreatmentRecalled
		tr.RecallReason = reason
		tr.UpdatedAt = now
		if err := reg.Treatments.UpdateStatus(tr); err != nil {
			return fmt.Errorf("actualizar tratamiento: %w", err)
		}
		if err := appendLineHistory(reg, tr.HospitalID, entity.ActionRecall,
			entity.DirectionInternal, tr.ID, tr.Lines, now); err != nil {
			return err
		}
		recalled = *tr
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("treatment_id", recalled.ID).Str("reason", reason).Msg("recall ejecutado")
	return &recalled, nil
}
