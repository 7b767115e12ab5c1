package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

const shortTimeout = 50 * time.Millisecond

func shipmentKey(sender string) lock.Key {
	return lock.Key{Domain: lock.DomainShipment, A: sender, B: "product-1"}
}

func TestAcquire_ExclusionMutua(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	key := shipmentKey("org-a")

	release, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err)
	defer release()

	_, err = m.Acquire(ctx, key, shortTimeout)
	require.ErrorIs(t, err, domain.ErrLockTimeout, "la clave ocupada no se adquiere dos veces")
}

func TestAcquire_ClavesIndependientes(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()

	releaseA, err := m.Acquire(ctx, shipmentKey("org-a"), shortTimeout)
	require.NoError(t, err)
	defer releaseA()

	// Otra tupla del mismo dominio no compite.
	releaseB, err := m.Acquire(ctx, shipmentKey("org-b"), shortTimeout)
	require.NoError(t, err)
	releaseB()

	// La misma tupla en otro dominio tampoco.
	releaseC, err := m.Acquire(ctx, lock.Key{
		Domain: lock.DomainAllocation, A: "org-a", B: "product-1",
	}, shortTimeout)
	require.NoError(t, err)
	releaseC()
}

func TestRelease_PermiteReadquirir(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	key := shipmentKey("org-a")

	release, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err)
	release()

	release2, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err, "la clave liberada vuelve a estar disponible")
	release2()
}

func TestRelease_Idempotente(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	key := shipmentKey("org-a")

	release, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err)
	release()
	release()

	// La doble liberación no dejó el semáforo con un permiso extra.
	release2, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err)
	defer release2()

	_, err = m.Acquire(ctx, key, shortTimeout)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestAcquire_EsperaHastaLiberacion(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	key := shipmentKey("org-a")

	release, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	release2, err := m.Acquire(ctx, key, time.Second)
	require.NoError(t, err, "la espera dentro del timeout debe adquirir al liberarse")
	release2()
}

func TestAcquire_ContextoCancelado(t *testing.T) {
	m := memory.NewLockManager()
	key := shipmentKey("org-a")

	release, err := m.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = m.Acquire(ctx, key, time.Minute)
	require.ErrorIs(t, err, context.Canceled, "la cancelación gana al timeout del lock")
}

func TestAcquireAll_LiberaTodoAlFallar(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	keyA := shipmentKey("org-a")
	keyB := shipmentKey("org-b")

	// keyB ocupada hace fallar el lote completo.
	holdB, err := m.Acquire(ctx, keyB, shortTimeout)
	require.NoError(t, err)
	defer holdB()

	_, err = m.AcquireAll(ctx, []lock.Key{keyA, keyB}, shortTimeout)
	require.ErrorIs(t, err, domain.ErrLockTimeout)

	// keyA quedó libre: la adquisición parcial se revirtió.
	release, err := m.Acquire(ctx, keyA, shortTimeout)
	require.NoError(t, err, "el lote fallido no debe dejar claves tomadas")
	release()
}

func TestAcquireAll_DeduplicaClaves(t *testing.T) {
	m := memory.NewLockManager()
	ctx := context.Background()
	key := shipmentKey("org-a")

	release, err := m.AcquireAll(ctx, []lock.Key{key, key}, shortTimeout)
	require.NoError(t, err, "la clave repetida en el lote no se auto-bloquea")
	release()

	release2, err := m.Acquire(ctx, key, shortTimeout)
	require.NoError(t, err, "tras liberar el lote la clave queda disponible")
	release2()
}
