package coordinator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// hospitalCodeIDs retorna los IDs de los primeros n códigos IN_STOCK del hospital.
func hospitalCodeIDs(t *testing.T, f *fixture, n int) []string {
	t.Helper()
	codes, err := f.ledger.ListCodes(hospitalID, f.product.ID, entity.CodeInStock)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(codes), n, "el hospital debe tener stock suficiente")
	ids := make([]string, 0, n)
	for _, c := range codes[:n] {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestDispose_MarcaTerminal(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 4)
	ids := hospitalCodeIDs(t, f, 2)

	err := f.coord.Dispose(context.Background(), hospitalID, ids)
	require.NoError(t, err)

	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeDisposed))
	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeInStock))
}

func TestDispose_DobleDisposicion(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	ids := hospitalCodeIDs(t, f, 1)
	ctx := context.Background()

	require.NoError(t, f.coord.Dispose(ctx, hospitalID, ids))
	before := len(f.store.AllHistory())

	// DISPOSED es terminal: el segundo intento falla completo y no deja historial.
	err := f.coord.Dispose(ctx, hospitalID, ids)
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, before, len(f.store.AllHistory()), "una operación fallida no agrega historial")
}

func TestDispose_SoloHospitales(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 2)
	codes, err := f.ledger.ListCodes(manufacturerID, f.product.ID, entity.CodeInStock)
	require.NoError(t, err)

	err = f.coord.Dispose(context.Background(), manufacturerID, []string{codes[0].ID})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDispose_SoloUnidadesPropias(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 2)
	codes, err := f.ledger.ListCodes(manufacturerID, f.product.ID, entity.CodeInStock)
	require.NoError(t, err)

	// El hospital no puede disponer unidades que no le pertenecen.
	err = f.coord.Dispose(context.Background(), hospitalID, []string{codes[0].ID})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDispose_CodigoInexistente(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 1)

	err := f.coord.Dispose(context.Background(), hospitalID, []string{"no-existe"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
