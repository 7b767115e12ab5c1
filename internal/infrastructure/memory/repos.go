package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Organizaciones
// ──────────────────────────────────────────────────────────────────────────────

type orgRepo struct{ r repos }

func (o orgRepo) GetByID(id string) (*entity.Organization, error) {
	var out *entity.Organization
	o.r.read(func(st *state) {
		if org, ok := st.orgs[id]; ok {
			out = &org
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

type productRepo struct{ r repos }

func (p productRepo) Create(product *entity.Product) error {
	return p.r.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return fmt.Errorf("producto %s: %w", product.ID, domain.ErrInvalidInput)
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (p productRepo) GetByID(id string) (*entity.Product, error) {
	var out *entity.Product
	p.r.read(func(st *state) {
		if prod, ok := st.products[id]; ok {
			out = &prod
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (p productRepo) ListByManufacturer(manufacturerID string) ([]*entity.Product, error) {
	var out []*entity.Product
	p.r.read(func(st *state) {
		for _, prod := range st.products {
			if prod.ManufacturerID == manufacturerID {
				cp := prod
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (p productRepo) SetStatus(id string, status entity.ProductStatus) error {
	return p.r.write(func(st *state) error {
		prod, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		prod.Status = status
		prod.UpdatedAt = time.Now()
		st.products[id] = prod
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

type lotRepo struct{ r repos }

func (l lotRepo) Create(lot *entity.Lot) error {
	return l.r.write(func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return fmt.Errorf("lote %s: %w", lot.ID, domain.ErrInvalidInput)
		}
		st.lots[lot.ID] = *lot
		return nil
	})
}

func (l lotRepo) GetByID(id string) (*entity.Lot, error) {
	var out *entity.Lot
	l.r.read(func(st *state) {
		if lot, ok := st.lots[id]; ok {
			out = &lot
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (l lotRepo) NextSequence(manufacturerID string, date time.Time) (int, error) {
	day := date.Format("20060102")
	max := 0
	l.r.read(func(st *state) {
		for _, lot := range st.lots {
			if lot.ManufacturerID == manufacturerID && lot.ManufactureDate.Format("20060102") == day {
				if lot.Sequence > max {
					max = lot.Sequence
				}
			}
		}
	})
	return max + 1, nil
}

func (l lotRepo) ExistsLotNumber(manufacturerID, lotNumber string) (bool, error) {
	found := false
	l.r.read(func(st *state) {
		for _, lot := range st.lots {
			if lot.ManufacturerID == manufacturerID && lot.LotNumber == lotNumber {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (l lotRepo) ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	l.r.read(func(st *state) {
		for _, lot := range st.lots {
			if lot.ExpiryDate.Before(cutoff) {
				cp := lot
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Códigos virtuales (ledger)
// ──────────────────────────────────────────────────────────────────────────────

type codeRepo struct{ r repos }

func (c codeRepo) CreateBatch(codes []entity.VirtualCode) error {
	return c.r.write(func(st *state) error {
		for _, code := range codes {
			if _, ok := st.codes[code.ID]; ok {
				return fmt.Errorf("código %s: %w", code.ID, domain.ErrInvalidInput)
			}
			st.codes[code.ID] = code
		}
		return nil
	})
}

func (c codeRepo) GetByID(id string) (*entity.VirtualCode, error) {
	var out *entity.VirtualCode
	c.r.read(func(st *state) {
		if code, ok := st.codes[id]; ok {
			out = &code
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (c codeRepo) GetByIDs(ids []string) ([]entity.VirtualCode, error) {
	out := make([]entity.VirtualCode, 0, len(ids))
	c.r.read(func(st *state) {
		for _, id := range ids {
			if code, ok := st.codes[id]; ok {
				out = append(out, code)
			}
		}
	})
	return out, nil
}

func (c codeRepo) ListAvailableFIFO(ownerID, productID string) ([]entity.VirtualCode, error) {
	return c.ListByStatus(ownerID, productID, entity.CodeInStock)
}

func (c codeRepo) ListByStatus(ownerID, productID string, status entity.CodeStatus) ([]entity.VirtualCode, error) {
	var out []entity.VirtualCode
	c.r.read(func(st *state) {
		for _, code := range st.codes {
			if code.OwnerID == ownerID && code.ProductID == productID && code.Status == status {
				out = append(out, code)
			}
		}
	})
	entity.SortFIFO(out)
	return out, nil
}

func (c codeRepo) CountByStatus(ownerID, productID string, status entity.CodeStatus) (int, error) {
	count := 0
	c.r.read(func(st *state) {
		for _, code := range st.codes {
			if code.OwnerID == ownerID && code.ProductID == productID && code.Status == status {
				count++
			}
		}
	})
	return count, nil
}

func (c codeRepo) UpdateStatus(code *entity.VirtualCode) error {
	return c.r.write(func(st *state) error {
		if _, ok := st.codes[code.ID]; !ok {
			return domain.ErrNotFound
		}
		st.codes[code.ID] = *code
		return nil
	})
}

func (c codeRepo) ExistsCode(code string) (bool, error) {
	found := false
	c.r.read(func(st *state) {
		for _, vc := range st.codes {
			if vc.Code == code {
				found = true
				return
			}
		}
	})
	return found, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Embarques, tratamientos y devoluciones
// ──────────────────────────────────────────────────────────────────────────────

type shipmentRepo struct{ r repos }

func (s shipmentRepo) Create(shipment *entity.Shipment) error {
	return s.r.write(func(st *state) error {
		st.shipments[shipment.ID] = *shipment
		return nil
	})
}

func (s shipmentRepo) GetByID(id string) (*entity.Shipment, error) {
	var out *entity.Shipment
	s.r.read(func(st *state) {
		if sh, ok := st.shipments[id]; ok {
			out = &sh
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (s shipmentRepo) UpdateStatus(shipment *entity.Shipment) error {
	return s.r.write(func(st *state) error {
		if _, ok := st.shipments[shipment.ID]; !ok {
			return domain.ErrNotFound
		}
		st.shipments[shipment.ID] = *shipment
		return nil
	})
}

type treatmentRepo struct{ r repos }

func (t treatmentRepo) Create(treatment *entity.Treatment) error {
	return t.r.write(func(st *state) error {
		st.treatments[treatment.ID] = *treatment
		return nil
	})
}

func (t treatmentRepo) GetByID(id string) (*entity.Treatment, error) {
	var out *entity.Treatment
	t.r.read(func(st *state) {
		if tr, ok := st.treatments[id]; ok {
			out = &tr
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (t treatmentRepo) UpdateStatus(treatment *entity.Treatment) error {
	return t.r.write(func(st *state) error {
		if _, ok := st.treatments[treatment.ID]; !ok {
			return domain.ErrNotFound
		}
		st.treatments[treatment.ID] = *treatment
		return nil
	})
}

type returnRepo struct{ r repos }

func (rr returnRepo) Create(request *entity.ReturnRequest) error {
	return rr.r.write(func(st *state) error {
		st.returns[request.ID] = *request
		return nil
	})
}

func (rr returnRepo) GetByID(id string) (*entity.ReturnRequest, error) {
	var out *entity.ReturnRequest
	rr.r.read(func(st *state) {
		if req, ok := st.returns[id]; ok {
			out = &req
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (rr returnRepo) UpdateStatus(request *entity.ReturnRequest) error {
	return rr.r.write(func(st *state) error {
		if _, ok := st.returns[request.ID]; !ok {
			return domain.ErrNotFound
		}
		st.returns[request.ID] = *request
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial (append-only)
// ──────────────────────────────────────────────────────────────────────────────

type historyRepo struct{ r repos }

func (h historyRepo) Append(entry *entity.HistoryEntry) error {
	return h.r.write(func(st *state) error {
		st.history = append(st.history, *entry)
		return nil
	})
}

func (h historyRepo) ListByOrganization(organizationID string, from, to time.Time) ([]entity.HistoryEntry, error) {
	var out []entity.HistoryEntry
	h.r.read(func(st *state) {
		for _, e := range st.history {
			if e.OrganizationID != organizationID {
				continue
			}
			if !from.IsZero() && e.CreatedAt.Before(from) {
				continue
			}
			if !to.IsZero() && e.CreatedAt.After(to) {
				continue
			}
			out = append(out, e)
		}
	})
	return out, nil
}
