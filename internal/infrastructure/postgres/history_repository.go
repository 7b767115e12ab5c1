package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación de HistoryRepository sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no existen UPDATE ni DELETE.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador del historial. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append agrega una entrada al historial.
func (r *HistoryRepo) Append(entry *entity.HistoryEntry) error {
	query := `
		INSERT INTO history (id, organization_id, action, direction, product_id, lot_id, ref_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.OrganizationID, entry.Action, entry.Direction,
		entry.ProductID, entry.LotID, entry.RefID, entry.Quantity, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// ListByOrganization retorna las entradas de la organización en [from, to], en
// orden cronológico. Zero values en from/to desactivan el filtro correspondiente.
func (r *HistoryRepo) ListByOrganization(organizationID string, from, to time.Time) ([]entity.HistoryEntry, error) {
	query := `
		SELECT id, organization_id, action, direction, product_id, lot_id, ref_id, quantity, created_at
		FROM history
		WHERE organization_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at ASC`
	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}
	rows, err := r.q.Query(context.Background(), query, organizationID, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Action, &e.Direction,
			&e.ProductID, &e.LotID, &e.RefID, &e.Quantity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
