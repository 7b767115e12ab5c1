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

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo implementación de ShipmentRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas se guardan como JSONB y los códigos asignados como text[].
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de embarques. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// Create persiste un embarque con sus códigos ya asignados.
func (r *ShipmentRepo) Create(shipment *entity.Shipment) error {
	lines, err := json.Marshal(shipment.Lines)
	if err != nil {
		return fmt.Errorf("marshal shipment lines: %w", err)
	}
	query := `
		INSERT INTO shipments (id, sender_id, receiver_id, lines, code_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(context.Background(), query,
		shipment.ID, shipment.SenderID, shipment.ReceiverID, lines, shipment.CodeIDs,
		shipment.Status, shipment.CreatedAt, shipment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

// GetByID obtiene un embarque por ID.
func (r *ShipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	query := `
		SELECT id, sender_id, receiver_id, lines, code_ids, status, created_at, updated_at
		FROM shipments WHERE id = $1`
	var s entity.Shipment
	var lines []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.SenderID, &s.ReceiverID, &lines, &s.CodeIDs, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if err := json.Unmarshal(lines, &s.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal shipment lines: %w", err)
	}
	return &s, nil
}

// UpdateStatus persiste el estado y updated_at del embarque.
func (r *ShipmentRepo) UpdateStatus(shipment *entity.Shipment) error {
	query := `UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, shipment.ID, shipment.Status, shipment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
