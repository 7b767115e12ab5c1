package lots_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lots"
	"github.com/jhoicas/Trazabilidad-api/internal/application/products"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

const (
	manufacturerID = "org-manufacturer"
	hospitalID     = "org-hospital"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	registry *lots.Registry
	products *products.UseCase
	ledger   *ledger.Ledger
	product  *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutOrganization(entity.Organization{
		ID: manufacturerID, Name: "Laboratorio Andino",
		Role: entity.RoleManufacturer, Status: entity.OrganizationActive, LotPrefix: "LA",
	})
	store.PutOrganization(entity.Organization{
		ID: hospitalID, Name: "Hospital Central",
		Role: entity.RoleHospital, Status: entity.OrganizationActive,
	})

	reads := store.Registry()
	now := func() time.Time { return testNow }
	registry := lots.New(store, memory.NewLockManager(), reads.Organizations, reads.Products, rules.Default(), nil, now)
	productUC := products.New(reads.Organizations, reads.Products, now)

	product, err := productUC.Create(manufacturerID, "Hilo PDO 29G", "PDO29G001")
	require.NoError(t, err, "el producto de prueba debe crearse")

	return &fixture{
		store:    store,
		registry: registry,
		products: productUC,
		ledger:   ledger.New(reads.Codes),
		product:  product,
	}
}

func (f *fixture) input(quantity int) lots.CreateLotInput {
	manufactureDate := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return lots.CreateLotInput{
		ManufacturerID:  manufacturerID,
		ProductID:       f.product.ID,
		Quantity:        quantity,
		ManufactureDate: manufactureDate,
		ExpiryDate:      manufactureDate.AddDate(2, 0, 0),
	}
}

func TestCreateLot_GeneraCodigosEnStock(t *testing.T) {
	f := newFixture(t)

	lot, err := f.registry.CreateLot(context.Background(), f.input(5))
	require.NoError(t, err)

	assert.Equal(t, "LA-20250610-001", lot.LotNumber, "el número de lote usa el prefijo del fabricante")
	assert.Equal(t, 1, lot.Sequence)
	assert.Equal(t, 5, lot.Quantity)

	codes, err := f.ledger.ListCodes(manufacturerID, f.product.ID, entity.CodeInStock)
	require.NoError(t, err)
	require.Len(t, codes, 5, "cada unidad del lote recibe un código IN_STOCK")
	for _, c := range codes {
		assert.Equal(t, lot.ID, c.LotID)
		assert.Equal(t, manufacturerID, c.OwnerID, "los códigos nacen propiedad del fabricante")
		assert.True(t, rules.ValidVirtualCode(c.Code), "código con formato inválido: %s", c.Code)
	}
}

func TestCreateLot_SecuenciaIncrementaPorDia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.registry.CreateLot(ctx, f.input(3))
	require.NoError(t, err)
	second, err := f.registry.CreateLot(ctx, f.input(3))
	require.NoError(t, err)

	assert.Equal(t, "LA-20250610-001", first.LotNumber)
	assert.Equal(t, "LA-20250610-002", second.LotNumber, "el segundo lote del día incrementa la secuencia")

	// Otro día de fabricación reinicia la secuencia.
	in := f.input(3)
	in.ManufactureDate = in.ManufactureDate.AddDate(0, 0, 1)
	in.ExpiryDate = in.ExpiryDate.AddDate(0, 0, 1)
	third, err := f.registry.CreateLot(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "LA-20250611-001", third.LotNumber)
}

func TestCreateLot_VencimientoMinimo(t *testing.T) {
	f := newFixture(t)

	in := f.input(3)
	in.ExpiryDate = in.ManufactureDate.AddDate(0, 0, 29)
	_, err := f.registry.CreateLot(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidInput, "el vencimiento debe superar el mínimo de días")

	n, err := f.ledger.CountByStatus(manufacturerID, f.product.ID, entity.CodeInStock)
	require.NoError(t, err)
	assert.Zero(t, n, "un lote rechazado no genera códigos")
}

func TestCreateLot_CantidadFueraDeRango(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.CreateLot(ctx, f.input(0))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.registry.CreateLot(ctx, f.input(1_000_001))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateLot_ProductoInactivo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.products.SetStatus(manufacturerID, f.product.ID, entity.ProductInactive))

	_, err := f.registry.CreateLot(context.Background(), f.input(3))
	require.ErrorIs(t, err, domain.ErrInvalidInput, "no se producen lotes de un producto inactivo")
}

func TestCreateLot_SoloFabricantes(t *testing.T) {
	f := newFixture(t)

	in := f.input(3)
	in.ManufacturerID = hospitalID
	_, err := f.registry.CreateLot(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrUnauthorized, "un hospital no puede producir lotes")
}

func TestCreateLot_ProductoAjeno(t *testing.T) {
	f := newFixture(t)
	store := f.store
	store.PutOrganization(entity.Organization{
		ID: "org-manufacturer-2", Name: "Laboratorio Pacífico",
		Role: entity.RoleManufacturer, Status: entity.OrganizationActive, LotPrefix: "LP",
	})

	in := f.input(3)
	in.ManufacturerID = "org-manufacturer-2"
	_, err := f.registry.CreateLot(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrUnauthorized, "solo el dueño del producto puede producirlo")
}

// conflictTx simula un almacenamiento donde cada transacción choca con la
// secuencia de otro productor.
type conflictTx struct {
	mu    sync.Mutex
	calls int
}

func (c *conflictTx) Run(_ context.Context, _ func(repository.Registry) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return domain.ErrSequenceConflict
}

func TestCreateLot_ReintentaConBackoff(t *testing.T) {
	f := newFixture(t)
	reads := f.store.Registry()

	r := rules.Default()
	r.Locks.RetryDelay = 10 * time.Millisecond

	tx := &conflictTx{}
	registry := lots.New(tx, memory.NewLockManager(), reads.Organizations, reads.Products, r,
		nil, func() time.Time { return testNow })

	start := time.Now()
	_, err := registry.CreateLot(context.Background(), f.input(3))
	require.ErrorIs(t, err, domain.ErrSequenceConflict, "agotados los reintentos aflora el conflicto")

	assert.Equal(t, r.Locks.MaxAttempts, tx.calls, "se intenta el máximo configurado de veces")
	// Entre intentos espera d y 2d: el total supera el backoff acumulado.
	assert.GreaterOrEqual(t, time.Since(start), 3*r.Locks.RetryDelay,
		"los reintentos respetan el delay con backoff")
}

func TestCreateLot_RegistraHistorial(t *testing.T) {
	f := newFixture(t)

	lot, err := f.registry.CreateLot(context.Background(), f.input(5))
	require.NoError(t, err)

	history := f.store.AllHistory()
	require.Len(t, history, 1)
	entry := history[0]
	assert.Equal(t, entity.ActionLotProduction, entry.Action)
	assert.Equal(t, entity.DirectionIn, entry.Direction)
	assert.Equal(t, manufacturerID, entry.OrganizationID)
	assert.Equal(t, lot.ID, entry.LotID)
	assert.Equal(t, 5, entry.Quantity)
}
