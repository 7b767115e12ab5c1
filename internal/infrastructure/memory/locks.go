package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
)

// LockManager implementa lock.Manager sobre semáforos en memoria. Cada clave
// canónica tiene un semáforo de capacidad 1, con conteo de referencias para
// limpiar entradas sin contendientes.
type LockManager struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

// NewLockManager crea un LockManager vacío.
func NewLockManager() *LockManager {
	return &LockManager{entries: make(map[string]*lockEntry)}
}

func (m *LockManager) get(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *LockManager) put(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// Acquire adquiere el lock de la clave o falla con domain.ErrLockTimeout.
func (m *LockManager) Acquire(ctx context.Context, key lock.Key, timeout time.Duration) (lock.ReleaseFunc, error) {
	return m.acquire(ctx, key, time.Now().Add(timeout))
}

func (m *LockManager) acquire(ctx context.Context, key lock.Key, deadline time.Time) (lock.ReleaseFunc, error) {
	k := key.String()
	e := m.get(k)

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.sem
				m.put(k)
			})
		}
		return release, nil
	case <-timer.C:
		m.put(k)
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		m.put(k)
		return nil, ctx.Err()
	}
}

// AcquireAll adquiere las claves en orden ascendente bajo un deadline común.
// Ante cualquier falla libera en orden inverso lo ya adquirido.
func (m *LockManager) AcquireAll(ctx context.Context, keys []lock.Key, timeout time.Duration) (lock.ReleaseFunc, error) {
	sorted := lock.SortKeys(keys)
	deadline := time.Now().Add(timeout)

	releases := make([]lock.ReleaseFunc, 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, k := range sorted {
		rel, err := m.acquire(ctx, k, deadline)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, rel)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
