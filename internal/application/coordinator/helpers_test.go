package coordinator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lots"
	"github.com/jhoicas/Trazabilidad-api/internal/application/products"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	manufacturerID = "org-manufacturer"
	distributorID  = "org-distributor"
	distributor2ID = "org-distributor-2"
	hospitalID     = "org-hospital"
	hospital2ID    = "org-hospital-2"

	patientHash = "3f1a2b4c5d6e7f803f1a2b4c5d6e7f803f1a2b4c5d6e7f803f1a2b4c5d6e7f80"
)

// clock es un reloj controlable para probar la ventana de recall.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture arma el motor completo sobre el almacenamiento en memoria.
type fixture struct {
	store   *memory.Store
	clock   *clock
	coord   *coordinator.Coordinator
	lots    *lots.Registry
	ledger  *ledger.Ledger
	product *entity.Product
}

// newFixture construye el motor con las reglas por defecto, las cuatro
// organizaciones de la cadena y un producto activo del fabricante.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clk := newClock(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
	r := rules.Default()

	for _, org := range []entity.Organization{
		{ID: manufacturerID, Name: "Laboratorio Andino", Role: entity.RoleManufacturer, Status: entity.OrganizationActive, LotPrefix: "LA"},
		{ID: distributorID, Name: "Distribuidora Norte", Role: entity.RoleDistributor, Status: entity.OrganizationActive},
		{ID: distributor2ID, Name: "Distribuidora Sur", Role: entity.RoleDistributor, Status: entity.OrganizationActive},
		{ID: hospitalID, Name: "Hospital Central", Role: entity.RoleHospital, Status: entity.OrganizationActive},
		{ID: hospital2ID, Name: "Clínica Oriente", Role: entity.RoleHospital, Status: entity.OrganizationActive},
	} {
		store.PutOrganization(org)
	}

	reads := store.Registry()
	locks := memory.NewLockManager()

	coord := coordinator.New(coordinator.Deps{
		Reads: reads,
		Tx:    store,
		Locks: locks,
		Rules: r,
		Now:   clk.Now,
	})
	lotRegistry := lots.New(store, locks, reads.Organizations, reads.Products, r, nil, clk.Now)
	productUC := products.New(reads.Organizations, reads.Products, clk.Now)

	product, err := productUC.Create(manufacturerID, "Hilo PDO 29G", "PDO29G001")
	require.NoError(t, err, "el producto de prueba debe crearse")

	return &fixture{
		store:   store,
		clock:   clk,
		coord:   coord,
		lots:    lotRegistry,
		ledger:  ledger.New(reads.Codes),
		product: product,
	}
}

// produceLot crea un lote del producto de prueba con la cantidad indicada.
func (f *fixture) produceLot(t *testing.T, quantity int) *entity.Lot {
	t.Helper()
	manufactureDate := f.clock.Now().Truncate(24 * time.Hour)
	lot, err := f.lots.CreateLot(context.Background(), lots.CreateLotInput{
		ManufacturerID:  manufacturerID,
		ProductID:       f.product.ID,
		Quantity:        quantity,
		ManufactureDate: manufactureDate,
		ExpiryDate:      manufactureDate.AddDate(2, 0, 0),
	})
	require.NoError(t, err, "el lote de prueba debe producirse")
	return lot
}

// ship crea y acepta un embarque entre dos organizaciones.
func (f *fixture) ship(t *testing.T, senderID, receiverID string, quantity int) *entity.Shipment {
	t.Helper()
	ctx := context.Background()
	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Lines:      []entity.ProductLine{{ProductID: f.product.ID, Quantity: quantity}},
	})
	require.NoError(t, err, "el embarque debe crearse")
	accepted, err := f.coord.AcceptShipment(ctx, receiverID, sh.ID)
	require.NoError(t, err, "el embarque debe aceptarse")
	return accepted
}

// stockToHospital lleva quantity unidades por la cadena completa hasta el hospital.
func (f *fixture) stockToHospital(t *testing.T, quantity int) {
	t.Helper()
	f.produceLot(t, quantity)
	f.ship(t, manufacturerID, distributorID, quantity)
	f.ship(t, distributorID, hospitalID, quantity)
}

// count retorna el conteo de códigos de (propietario, estado) del producto de prueba.
func (f *fixture) count(t *testing.T, ownerID string, status entity.CodeStatus) int {
	t.Helper()
	n, err := f.ledger.CountByStatus(ownerID, f.product.ID, status)
	require.NoError(t, err, "el conteo no debe fallar")
	return n
}

// lines arma una línea única del producto de prueba.
func (f *fixture) lines(quantity int) []entity.ProductLine {
	return []entity.ProductLine{{ProductID: f.product.ID, Quantity: quantity}}
}
