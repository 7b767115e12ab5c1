package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.VirtualCodeRepository = (*VirtualCodeRepo)(nil)

// VirtualCodeRepo implementación de VirtualCodeRepository sobre PostgreSQL (usable con pool o tx).
type VirtualCodeRepo struct {
	q Querier
}

// NewVirtualCodeRepository construye el adaptador del ledger de códigos. Pasar pool o tx (Querier).
func NewVirtualCodeRepository(q Querier) *VirtualCodeRepo {
	return &VirtualCodeRepo{q: q}
}

const codeColumns = `id, code, lot_id, product_id, sequence, owner_id, previous_owner_id, pending_owner_id, status, manufacture_date, expiry_date, created_at, updated_at`

func scanCode(row pgx.Row, c *entity.VirtualCode) error {
	return row.Scan(
		&c.ID, &c.Code, &c.LotID, &c.ProductID, &c.Sequence,
		&c.OwnerID, &c.PreviousOwnerID, &c.PendingOwnerID, &c.Status,
		&c.ManufactureDate, &c.ExpiryDate, &c.CreatedAt, &c.UpdatedAt,
	)
}

// CreateBatch inserta todos los códigos de un lote recién producido.
func (r *VirtualCodeRepo) CreateBatch(codes []entity.VirtualCode) error {
	query := `
		INSERT INTO virtual_codes (` + codeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	ctx := context.Background()
	for i := range codes {
		c := &codes[i]
		_, err := r.q.Exec(ctx, query,
			c.ID, c.Code, c.LotID, c.ProductID, c.Sequence,
			c.OwnerID, c.PreviousOwnerID, c.PendingOwnerID, c.Status,
			c.ManufactureDate, c.ExpiryDate, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("código duplicado %s: %w", c.Code, domain.ErrGenerationExhausted)
			}
			return fmt.Errorf("insert virtual code: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un código por ID.
func (r *VirtualCodeRepo) GetByID(id string) (*entity.VirtualCode, error) {
	query := `SELECT ` + codeColumns + ` FROM virtual_codes WHERE id = $1`
	var c entity.VirtualCode
	err := scanCode(r.q.QueryRow(context.Background(), query, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get virtual code: %w", err)
	}
	return &c, nil
}

// GetByIDs obtiene los códigos de la lista preservando el orden de entrada.
// Los IDs inexistentes se omiten; el caller valida la cardinalidad.
func (r *VirtualCodeRepo) GetByIDs(ids []string) ([]entity.VirtualCode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + codeColumns + ` FROM virtual_codes WHERE id = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("get virtual codes: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]entity.VirtualCode, len(ids))
	for rows.Next() {
		var c entity.VirtualCode
		if err := scanCode(rows, &c); err != nil {
			return nil, fmt.Errorf("scan virtual code: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]entity.VirtualCode, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListAvailableFIFO retorna los códigos IN_STOCK de (propietario, producto) en orden FIFO total.
func (r *VirtualCodeRepo) ListAvailableFIFO(ownerID, productID string) ([]entity.VirtualCode, error) {
	return r.ListByStatus(ownerID, productID, entity.CodeInStock)
}

// ListByStatus retorna los códigos de (propietario, producto, estado) en orden FIFO total.
func (r *VirtualCodeRepo) ListByStatus(ownerID, productID string, status entity.CodeStatus) ([]entity.VirtualCode, error) {
	query := `
		SELECT ` + codeColumns + `
		FROM virtual_codes
		WHERE owner_id = $1 AND product_id = $2 AND status = $3
		ORDER BY manufacture_date ASC, expiry_date ASC, sequence ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, ownerID, productID, status)
	if err != nil {
		return nil, fmt.Errorf("list virtual codes: %w", err)
	}
	defer rows.Close()

	var out []entity.VirtualCode
	for rows.Next() {
		var c entity.VirtualCode
		if err := scanCode(rows, &c); err != nil {
			return nil, fmt.Errorf("scan virtual code: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByStatus cuenta los códigos de (propietario, producto, estado).
func (r *VirtualCodeRepo) CountByStatus(ownerID, productID string, status entity.CodeStatus) (int, error) {
	query := `SELECT COUNT(*) FROM virtual_codes WHERE owner_id = $1 AND product_id = $2 AND status = $3`
	var count int
	err := r.q.QueryRow(context.Background(), query, ownerID, productID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count virtual codes: %w", err)
	}
	return count, nil
}

// UpdateStatus persiste estado, propietarios y updated_at de un código.
func (r *VirtualCodeRepo) UpdateStatus(code *entity.VirtualCode) error {
	query := `
		UPDATE virtual_codes
		SET status = $2, owner_id = $3, previous_owner_id = $4, pending_owner_id = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		code.ID, code.Status, code.OwnerID, code.PreviousOwnerID, code.PendingOwnerID, code.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update virtual code: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsCode indica si el código de 12 caracteres ya existe en el espacio global.
func (r *VirtualCodeRepo) ExistsCode(code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM virtual_codes WHERE code = $1)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists virtual code: %w", err)
	}
	return exists, nil
}
