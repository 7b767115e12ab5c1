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

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository sobre PostgreSQL (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste una solicitud de devolución.
func (r *ReturnRepo) Create(request *entity.ReturnRequest) error {
	lines, err := json.Marshal(request.Lines)
	if err != nil {
		return fmt.Errorf("marshal return lines: %w", err)
	}
	query := `
		INSERT INTO return_requests (id, requester_id, target_id, lines, code_ids, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		request.ID, request.RequesterID, request.TargetID, lines, request.CodeIDs,
		request.Reason, request.Status, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert return request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud de devolución por ID.
func (r *ReturnRepo) GetByID(id string) (*entity.ReturnRequest, error) {
	query := `
		SELECT id, requester_id, target_id, lines, code_ids, reason, status, created_at, updated_at
		FROM return_requests WHERE id = $1`
	var req entity.ReturnRequest
	var lines []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&req.ID, &req.RequesterID, &req.TargetID, &lines, &req.CodeIDs,
		&req.Reason, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get return request: %w", err)
	}
	if err := json.Unmarshal(lines, &req.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal return lines: %w", err)
	}
	return &req, nil
}

// UpdateStatus persiste el estado y updated_at de la solicitud.
func (r *ReturnRepo) UpdateStatus(request *entity.ReturnRequest) error {
	query := `UPDATE return_requests SET status = $2, updated_at = $3 WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, request.ID, request.Status, request.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update return request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
