package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.TreatmentRepository = (*TreatmentRepo)(nil)

// TreatmentRepo implementación de TreatmentRepository sobre PostgreSQL (usable con pool o tx).
type TreatmentRepo struct {
	q Querier
}

// NewTreatmentRepository construye el adaptador de tratamientos. Pasar pool o tx (Querier).
func NewTreatmentRepository(q Querier) *TreatmentRepo {
	return &TreatmentRepo{q: q}
}

// Create persiste un tratamiento. Solo se guarda el hash del teléfono del paciente.
func (r *TreatmentRepo) Create(treatment *entity.Treatment) error {
	lines, err := json.Marshal(treatment.Lines)
	if err != nil {
		return fmt.Errorf("marshal treatment lines: %w", err)
	}
	query := `
		INSERT INTO treatments (id, hospital_id, patient_phone_hash, lines, code_ids, treatment_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		treatment.ID, treatment.HospitalID, treatment.PatientPhoneHash, lines, treatment.CodeIDs,
		treatment.TreatmentDate, treatment.Status, treatment.CreatedAt, treatment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert treatment: %w", err)
	}
	return nil
}

// GetByID obtiene un tratamiento por ID.
func (r *TreatmentRepo) GetByID(id string) (*entity.Treatment, error) {
	query := `
		SELECT id, hospital_id, patient_phone_hash, lines, code_ids, treatment_date, status, recall_reason, created_at, updated_at
		FROM treatments WHERE id = $1`
	var t entity.Treatment
	var lines []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.HospitalID, &t.PatientPhoneHash, &lines, &t.CodeIDs,
		&t.TreatmentDate, &t.Status, &t.RecallReason, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get treatment: %w", err)
	}
	if err := json.Unmarshal(lines, &t.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal treatment lines: %w", err)
	}
	return &t, nil
}

// UpdateStatus persiste el estado, la razón de recall y updated_at del tratamiento.
func (r *TreatmentRepo) UpdateStatus(treatment *entity.Treatment) error {
	query := `UPDATE treatments SET status = $2, recall_reason = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, treatment.ID, treatment.Status, treatment.RecallReason, treatment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update treatment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
