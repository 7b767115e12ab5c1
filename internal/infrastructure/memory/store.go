// Package memory implementa el almacenamiento en memoria del motor: los
// repositorios del Registry y un TxRunner con semántica copy-on-write. Se usa
// en los tests y en modo demo sin base de datos.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// Store contiene el estado compartido. Run clona el estado, ejecuta el
// callback contra la copia y solo al confirmar la publica: una transacción
// fallida no deja mutación parcial observable.
type Store struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	orgs       map[string]entity.Organization
	products   map[string]entity.Product
	lots       map[string]entity.Lot
	codes      map[string]entity.VirtualCode
	shipments  map[string]entity.Shipment
	treatments map[string]entity.Treatment
	returns    map[string]entity.ReturnRequest
	history    []entity.HistoryEntry
}

func newState() *state {
	return &state{
		orgs:       make(map[string]entity.Organization),
		products:   make(map[string]entity.Product),
		lots:       make(map[string]entity.Lot),
		codes:      make(map[string]entity.VirtualCode),
		shipments:  make(map[string]entity.Shipment),
		treatments: make(map[string]entity.Treatment),
		returns:    make(map[string]entity.ReturnRequest),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.orgs {
		c.orgs[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.lots {
		c.lots[k] = v
	}
	for k, v := range st.codes {
		c.codes[k] = v
	}
	for k, v := range st.shipments {
		c.shipments[k] = v
	}
	for k, v := range st.treatments {
		c.treatments[k] = v
	}
	for k, v := range st.returns {
		c.returns[k] = v
	}
	c.history = make([]entity.HistoryEntry, len(st.history))
	copy(c.history, st.history)
	return c
}

// NewStore construye el almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ repository.TxRunner = (*Store)(nil)

// Run ejecuta fn contra un clon del estado y lo publica solo si fn retorna nil.
func (s *Store) Run(_ context.Context, fn func(r repository.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(registryFor(repos{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Registry retorna los repositorios de lectura/escritura directa (fuera de
// transacción), sincronizados con el lock del store.
func (s *Store) Registry() repository.Registry {
	return registryFor(repos{s: s})
}

// PutOrganization registra o reemplaza una organización (seed para tests y demo;
// el alta real de organizaciones es de un sistema externo).
func (s *Store) PutOrganization(o entity.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.orgs[o.ID] = o
}

// AllHistory retorna una copia del historial completo en orden de inserción.
func (s *Store) AllHistory() []entity.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.HistoryEntry, len(s.st.history))
	copy(out, s.st.history)
	return out
}

// repos resuelve sobre qué estado opera cada repositorio: el vivo del store
// (con locking) o el clon transaccional (Run ya sostiene el lock).
type repos struct {
	s  *Store // nil en modo transaccional
	st *state
}

func (r repos) read(fn func(st *state)) {
	if r.s != nil {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
		fn(r.s.st)
		return
	}
	fn(r.st)
}

func (r repos) write(fn func(st *state) error) error {
	if r.s != nil {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		return fn(r.s.st)
	}
	return fn(r.st)
}

func registryFor(r repos) repository.Registry {
	return repository.Registry{
		Organizations: orgRepo{r},
		Products:      productRepo{r},
		Lots:          lotRepo{r},
		Codes:         codeRepo{r},
		Shipments:     shipmentRepo{r},
		Treatments:    treatmentRepo{r},
		Returns:       returnRepo{r},
		History:       historyRepo{r},
	}
}
