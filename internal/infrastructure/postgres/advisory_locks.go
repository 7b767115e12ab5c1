package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
)

var _ lock.Manager = (*AdvisoryLockManager)(nil)

// pollInterval espera entre intentos de pg_try_advisory_lock.
const pollInterval = 50 * time.Millisecond

// AdvisoryLockManager implementa lock.Manager con advisory locks de sesión de
// PostgreSQL. Cada lock retiene una conexión dedicada del pool hasta el release:
// los advisory locks de sesión viven atados a la conexión que los tomó.
type AdvisoryLockManager struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLockManager construye el manager sobre el pool.
func NewAdvisoryLockManager(pool *pgxpool.Pool) *AdvisoryLockManager {
	return &AdvisoryLockManager{pool: pool}
}

// lockID hashea la forma canónica de la clave al espacio int64 de advisory locks.
func lockID(key lock.Key) int64 {
	h := fnv.New64a()
	h.Write([]byte(key.String()))
	return int64(h.Sum64())
}

// Acquire toma el advisory lock de la clave o falla con domain.ErrLockTimeout.
func (m *AdvisoryLockManager) Acquire(ctx context.Context, key lock.Key, timeout time.Duration) (lock.ReleaseFunc, error) {
	return m.acquire(ctx, key, time.Now().Add(timeout))
}

func (m *AdvisoryLockManager) acquire(ctx context.Context, key lock.Key, deadline time.Time) (lock.ReleaseFunc, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	id := lockID(key)

	for {
		var locked bool
		if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, id).Scan(&locked); err != nil {
			conn.Release()
			return nil, fmt.Errorf("try advisory lock: %w", err)
		}
		if locked {
			var once sync.Once
			release := func() {
				once.Do(func() {
					_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, id)
					conn.Release()
				})
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			conn.Release()
			return nil, domain.ErrLockTimeout
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			conn.Release()
			return nil, ctx.Err()
		}
	}
}

// AcquireAll toma las claves en orden ascendente bajo un deadline común.
// Ante cualquier falla libera en orden inverso lo ya adquirido.
func (m *AdvisoryLockManager) AcquireAll(ctx context.Context, keys []lock.Key, timeout time.Duration) (lock.ReleaseFunc, error) {
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
