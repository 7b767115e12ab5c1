package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote nuevo. El unique de (manufacturer_id, lot_number)
// reporta colisiones de secuencia como conflicto.
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, manufacturer_id, lot_number, sequence, manufacture_date, expiry_date, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.ManufacturerID, lot.LotNumber, lot.Sequence,
		lot.ManufactureDate, lot.ExpiryDate, lot.Quantity, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSequenceConflict
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `
		SELECT id, product_id, manufacturer_id, lot_number, sequence, manufacture_date, expiry_date, quantity, created_at
		FROM lots WHERE id = $1`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.ProductID, &l.ManufacturerID, &l.LotNumber, &l.Sequence,
		&l.ManufactureDate, &l.ExpiryDate, &l.Quantity, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// NextSequence retorna la siguiente secuencia libre para (fabricante, día de producción).
func (r *LotRepo) NextSequence(manufacturerID string, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM lots
		WHERE manufacturer_id = $1 AND manufacture_date::date = $2::date`
	var next int
	err := r.q.QueryRow(context.Background(), query, manufacturerID, date).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next lot sequence: %w", err)
	}
	return next, nil
}

// ExistsLotNumber indica si el número de lote ya existe para el fabricante.
func (r *LotRepo) ExistsLotNumber(manufacturerID, lotNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM lots WHERE manufacturer_id = $1 AND lot_number = $2)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, manufacturerID, lotNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists lot number: %w", err)
	}
	return exists, nil
}

// ListExpiringBefore retorna los lotes cuyo vencimiento es anterior al corte.
func (r *LotRepo) ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error) {
	query := `
		SELECT id, product_id, manufacturer_id, lot_number, sequence, manufacture_date, expiry_date, quantity, created_at
		FROM lots WHERE expiry_date < $1
		ORDER BY expiry_date ASC`
	rows, err := r.q.Query(context.Background(), query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()

	var out []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ManufacturerID, &l.LotNumber, &l.Sequence,
			&l.ManufactureDate, &l.ExpiryDate, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
