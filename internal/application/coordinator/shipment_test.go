package coordinator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

func TestCreateShipment_AsignaFIFOYMarcaPending(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 10)
	ctx := context.Background()

	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID:   manufacturerID,
		ReceiverID: distributorID,
		Lines:      f.lines(4),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentPending, sh.Status)
	assert.Len(t, sh.CodeIDs, 4, "deben asignarse exactamente 4 códigos")

	// Las unidades en tránsito salen del stock del remitente sin entrar al del receptor.
	assert.Equal(t, 6, f.count(t, manufacturerID, entity.CodeInStock))
	assert.Equal(t, 4, f.count(t, manufacturerID, entity.CodePending))
	assert.Equal(t, 0, f.count(t, distributorID, entity.CodeInStock))
}

func TestCreateShipment_ConcurrentesSinSolapamiento(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 40)
	ctx := context.Background()

	const (
		callers  = 8
		perUnits = 5
	)

	var wg sync.WaitGroup
	shipments := make([]*entity.Shipment, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shipments[i], errs[i] = f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
				SenderID:   manufacturerID,
				ReceiverID: distributorID,
				Lines:      f.lines(perUnits),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "con stock suficiente el embarque %d debe crearse", i)
	}

	// Ningún código puede quedar asignado a dos embarques distintos.
	seen := make(map[string]bool, callers*perUnits)
	for _, sh := range shipments {
		require.Len(t, sh.CodeIDs, perUnits)
		for _, id := range sh.CodeIDs {
			assert.False(t, seen[id], "código %s asignado a más de un embarque", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, callers*perUnits, "entre todos consumen el lote completo sin repetir")

	assert.Equal(t, 0, f.count(t, manufacturerID, entity.CodeInStock))
	assert.Equal(t, 40, f.count(t, manufacturerID, entity.CodePending))
}

func TestCreateShipment_FIFODeterminista(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 6)
	ctx := context.Background()

	// Dos embarques consecutivos consumen el frente FIFO sin solaparse.
	sh1, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(2),
	})
	require.NoError(t, err)
	sh2, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(2),
	})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range append(append([]string{}, sh1.CodeIDs...), sh2.CodeIDs...) {
		assert.False(t, seen[id], "ningún código puede asignarse a dos embarques")
		seen[id] = true
	}
}

func TestCreateShipment_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 3)

	_, err := f.coord.CreateShipment(context.Background(), coordinator.CreateShipmentInput{
		SenderID:   manufacturerID,
		ReceiverID: distributorID,
		Lines:      f.lines(5),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Todo-o-nada: ninguna unidad quedó en tránsito.
	assert.Equal(t, 3, f.count(t, manufacturerID, entity.CodeInStock))
	assert.Equal(t, 0, f.count(t, manufacturerID, entity.CodePending))
}

func TestCreateShipment_MatrizDeRoles(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	ctx := context.Background()

	// HOSPITAL → DISTRIBUTOR no embarca; ese flujo es una devolución.
	_, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: hospitalID, ReceiverID: distributorID, Lines: f.lines(1),
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	// MANUFACTURER → HOSPITAL tampoco: siempre pasa por un distribuidor.
	f.produceLot(t, 1)
	_, err = f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: hospitalID, Lines: f.lines(1),
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateShipment_DistribuidorADistribuidor(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 4)
	f.ship(t, manufacturerID, distributorID, 4)

	// Distribución multinivel permitida.
	f.ship(t, distributorID, distributor2ID, 2)
	assert.Equal(t, 2, f.count(t, distributorID, entity.CodeInStock))
	assert.Equal(t, 2, f.count(t, distributor2ID, entity.CodeInStock))
}

func TestAcceptShipment_TransfierePropiedad(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 5)
	ctx := context.Background()

	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(3),
	})
	require.NoError(t, err)

	accepted, err := f.coord.AcceptShipment(ctx, distributorID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentCompleted, accepted.Status)
	assert.Equal(t, 3, f.count(t, distributorID, entity.CodeInStock))
	assert.Equal(t, 2, f.count(t, manufacturerID, entity.CodeInStock))
	assert.Equal(t, 0, f.count(t, manufacturerID, entity.CodePending))
}

func TestAcceptShipment_SoloElReceptor(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 2)
	ctx := context.Background()

	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(1),
	})
	require.NoError(t, err)

	_, err = f.coord.AcceptShipment(ctx, manufacturerID, sh.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.coord.AcceptShipment(ctx, hospitalID, sh.ID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAcceptShipment_DobleResolucion(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 2)
	ctx := context.Background()

	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(2),
	})
	require.NoError(t, err)
	_, err = f.coord.AcceptShipment(ctx, distributorID, sh.ID)
	require.NoError(t, err)

	// Segunda resolución: falla sin tocar el ledger.
	_, err = f.coord.AcceptShipment(ctx, distributorID, sh.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = f.coord.RejectShipment(ctx, distributorID, sh.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	assert.Equal(t, 2, f.count(t, distributorID, entity.CodeInStock))
	assert.Equal(t, 0, f.count(t, manufacturerID, entity.CodeInStock))
}

func TestRejectShipment_DevuelveAlRemitente(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 4)
	ctx := context.Background()

	sh, err := f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(3),
	})
	require.NoError(t, err)

	rejected, err := f.coord.RejectShipment(ctx, distributorID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentRejected, rejected.Status)

	// Las unidades vuelven al stock del remitente y quedan re-embarcables.
	assert.Equal(t, 4, f.count(t, manufacturerID, entity.CodeInStock))
	assert.Equal(t, 0, f.count(t, distributorID, entity.CodeInStock))

	_, err = f.coord.CreateShipment(ctx, coordinator.CreateShipmentInput{
		SenderID: manufacturerID, ReceiverID: distributorID, Lines: f.lines(4),
	})
	require.NoError(t, err, "las unidades rechazadas deben poder re-embarcarse")
}
