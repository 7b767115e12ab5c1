package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

func registerTreatment(t *testing.T, f *fixture, quantity int) *entity.Treatment {
	t.Helper()
	tr, err := f.coord.RegisterTreatment(context.Background(), coordinator.RegisterTreatmentInput{
		HospitalID:       hospitalID,
		PatientPhoneHash: patientHash,
		Lines:            f.lines(quantity),
		TreatmentDate:    f.clock.Now(),
	})
	require.NoError(t, err, "el tratamiento debe registrarse")
	return tr
}

func TestRegisterTreatment_ConsumeStockPropio(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 5)

	tr := registerTreatment(t, f, 2)
	assert.Equal(t, entity.TreatmentCompleted, tr.Status)
	assert.Len(t, tr.CodeIDs, 2)

	assert.Equal(t, 3, f.count(t, hospitalID, entity.CodeInStock))
	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeUsed))
}

func TestRegisterTreatment_SoloHospitales(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 5)

	_, err := f.coord.RegisterTreatment(context.Background(), coordinator.RegisterTreatmentInput{
		HospitalID:       manufacturerID,
		PatientPhoneHash: patientHash,
		Lines:            f.lines(1),
		TreatmentDate:    f.clock.Now(),
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterTreatment_RequierePaciente(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)

	_, err := f.coord.RegisterTreatment(context.Background(), coordinator.RegisterTreatmentInput{
		HospitalID:    hospitalID,
		Lines:         f.lines(1),
		TreatmentDate: f.clock.Now(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterTreatment_SinStock(t *testing.T) {
	f := newFixture(t)
	f.produceLot(t, 5) // el stock está en el fabricante, no en el hospital

	_, err := f.coord.RegisterTreatment(context.Background(), coordinator.RegisterTreatmentInput{
		HospitalID:       hospitalID,
		PatientPhoneHash: patientHash,
		Lines:            f.lines(1),
		TreatmentDate:    f.clock.Now(),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecall_DentroDeLaVentana(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 4)
	tr := registerTreatment(t, f, 2)

	// Justo antes del límite de 24 horas.
	f.clock.Advance(24*time.Hour - time.Second)

	recalled, err := f.coord.Recall(context.Background(), hospitalID, tr.ID, "reacción adversa reportada")
	require.NoError(t, err)
	assert.Equal(t, entity.TreatmentRecalled, recalled.Status)
	assert.Equal(t, "reacción adversa reportada", recalled.RecallReason)
	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeRecalled))
	assert.Equal(t, 0, f.count(t, hospitalID, entity.CodeUsed))
	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeInStock), "el stock no usado no se toca")
}

func TestRecall_VentanaVencida(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	tr := registerTreatment(t, f, 2)

	f.clock.Advance(24*time.Hour + time.Second)

	_, err := f.coord.Recall(context.Background(), hospitalID, tr.ID, "reacción adversa reportada")
	require.ErrorIs(t, err, domain.ErrRecallWindowExpired)
	assert.Equal(t, 2, f.count(t, hospitalID, entity.CodeUsed), "los códigos siguen USED")
}

func TestRecall_RazonMuyCorta(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	tr := registerTreatment(t, f, 1)

	_, err := f.coord.Recall(context.Background(), hospitalID, tr.ID, "mal")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, f.count(t, hospitalID, entity.CodeUsed), "la razón inválida no muta el ledger")
}

func TestRecall_SoloElHospitalQueTrato(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	tr := registerTreatment(t, f, 1)

	_, err := f.coord.Recall(context.Background(), hospital2ID, tr.ID, "intento de otro hospital")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRecall_DobleRecall(t *testing.T) {
	f := newFixture(t)
	f.stockToHospital(t, 2)
	tr := registerTreatment(t, f, 1)
	ctx := context.Background()

	_, err := f.coord.Recall(ctx, hospitalID, tr.ID, "reacción adversa reportada")
	require.NoError(t, err)

	// RECALLED es terminal: el segundo intento falla por estado.
	_, err = f.coord.Recall(ctx, hospitalID, tr.ID, "segundo intento")
	require.ErrorIs(t, err, domain.ErrInvalidStatusForRecall)
}
