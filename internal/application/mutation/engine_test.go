package mutation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const testCompany = "comp-1"

var testDay = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

type engineFixture struct {
	store *memStore
	tx    *fakeTxRunner
	uc    *mutation.UseCase
}

func newEngine(cfg mutation.EngineConfig) *engineFixture {
	store := newMemStore()
	tx := &fakeTxRunner{s: store}
	uc := mutation.NewUseCase(
		tx,
		&fakeFlockRepo{s: store},
		&fakeBatchRepo{s: store},
		&fakeMutationRepo{s: store},
		cfg,
		logger.Nop(),
	)
	return &engineFixture{store: store, tx: tx, uc: uc}
}

func (f *engineFixture) seedFlock(id string, current int) {
	f.store.flocks[id] = &entity.Flock{
		ID:              id,
		CompanyID:       testCompany,
		CoopID:          "coop-" + id,
		Name:            id,
		StartDate:       testDay.AddDate(0, -2, 0),
		InitialQuantity: current,
		CurrentQuantity: current,
		Status:          entity.FlockStatusActive,
	}
}

func (f *engineFixture) seedBatch(id, flockID string, startDate time.Time, initial int) {
	f.store.batches[id] = &entity.Batch{
		ID:              id,
		FlockID:         flockID,
		StartDate:       startDate,
		InitialQuantity: initial,
		Status:          entity.BatchStatusActive,
	}
}

// Escenario base: lote origen con camadas de 5, 10 y 20 aves y un lote destino vacío.
func seedStandard(f *engineFixture) {
	f.seedFlock("origen", 35)
	f.seedFlock("destino", 0)
	f.seedBatch("b1", "origen", testDay.AddDate(0, 0, -30), 5)
	f.seedBatch("b2", "origen", testDay.AddDate(0, 0, -20), 10)
	f.seedBatch("b3", "origen", testDay.AddDate(0, 0, -10), 20)
}

func outInput(qty int) mutation.MutationInputDTO {
	return mutation.MutationInputDTO{
		CompanyID:          testCompany,
		UserID:             "user-1",
		FlockID:            "origen",
		Quantity:           qty,
		Date:               testDay,
		Direction:          entity.MutationDirectionOUT,
		Kind:               entity.MutationKindInternal,
		DestinationFlockID: "destino",
	}
}

// mirrorBatch localiza la camada espejo creada en el lote destino.
func (f *engineFixture) mirrorBatch(t *testing.T) *entity.Batch {
	t.Helper()
	var found *entity.Batch
	for _, b := range f.store.batches {
		if b.FlockID == "destino" {
			require.Nil(t, found, "debe existir exactamente una camada espejo")
			found = b
		}
	}
	require.NotNil(t, found, "debe existir la camada espejo en el destino")
	return found
}

// ──────────────────────────────────────────────────────────────────────────────
// FIFO OUT: consumo y conservación
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessFifo_ConsumoFifoYConservacion(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, 12, out.TotalQuantity)
	assert.Equal(t, 2, out.BatchesUsed)
	assert.False(t, out.Edited)

	// Las camadas más antiguas se consumen primero.
	assert.Equal(t, 5, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 7, f.store.batches["b2"].QuantityMutated)
	assert.Equal(t, 0, f.store.batches["b3"].QuantityMutated)

	// Conservación: lo que sale del origen entra al destino.
	assert.Equal(t, 23, f.store.flocks["origen"].CurrentQuantity)
	assert.Equal(t, 12, f.store.flocks["destino"].CurrentQuantity)

	mirror := f.mirrorBatch(t)
	assert.Equal(t, 12, mirror.InitialQuantity)
	assert.True(t, mirror.StartDate.Equal(testDay), "la camada espejo lleva la fecha de la mutación")

	m := f.store.mutations[out.MutationID]
	require.NotNil(t, m)
	assert.Equal(t, entity.MutationStatusActive, m.Status)
	require.Len(t, m.Lines, 2)
	require.NotNil(t, m.DestinationBatchID)
	assert.Equal(t, mirror.ID, *m.DestinationBatchID)
}

func TestProcessFifo_FaltanteSinEfectosParciales(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	_, err := f.uc.ProcessFifo(context.Background(), outInput(40))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	var insufficient *domain.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 40, insufficient.Requested)
	assert.Equal(t, 35, insufficient.Available)
	assert.Equal(t, 5, insufficient.Shortfall)

	// Nada quedó a medias: contadores y saldos intactos, sin mutación registrada.
	assert.Equal(t, 0, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 35, f.store.flocks["origen"].CurrentQuantity)
	assert.Equal(t, 0, f.store.flocks["destino"].CurrentQuantity)
	assert.Empty(t, f.store.mutations)
}

func TestProcessFifo_AutoMutacionRechazada(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	in := outInput(5)
	in.DestinationFlockID = "origen"

	_, err := f.uc.ProcessFifo(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "origen == destino es error de validación")
	assert.Empty(t, f.store.mutations)
}

func TestProcessFifo_ReintentaUnaVezAnteConflictoTx(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)
	f.tx.failuresLeft = 1 // el primer intento falla con conflicto de serialización

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err, "un conflicto aislado debe resolverse con el reintento")
	assert.True(t, out.Success)
	assert.Equal(t, 2, f.tx.runs)
}

// ──────────────────────────────────────────────────────────────────────────────
// IN: ingreso de aves
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessIn_CreaCamadaReceptora(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	f.seedFlock("origen", 0)

	in := mutation.MutationInputDTO{
		CompanyID: testCompany,
		UserID:    "user-1",
		FlockID:   "origen",
		Quantity:  50,
		Date:      testDay,
		Direction: entity.MutationDirectionIN,
		Kind:      entity.MutationKindExternal,
	}
	out, err := f.uc.ProcessFifo(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 50, out.TotalQuantity)
	assert.Equal(t, 50, f.store.flocks["origen"].CurrentQuantity)

	m := f.store.mutations[out.MutationID]
	require.NotNil(t, m)
	require.Len(t, m.Lines, 1)

	created := f.store.batches[m.Lines[0].BatchID]
	require.NotNil(t, created, "el ingreso debe crear la camada receptora")
	assert.Equal(t, 50, created.InitialQuantity)
	assert.Equal(t, 50, created.Available())
}

// ──────────────────────────────────────────────────────────────────────────────
// Manual
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessManual_AplicaLineasElegidas(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	in := outInput(0)
	in.Lines = []mutation.ManualLineInput{
		{BatchID: "b2", Quantity: 4},
		{BatchID: "b3", Quantity: 6},
	}
	out, err := f.uc.ProcessManual(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 10, out.TotalQuantity)
	assert.Equal(t, 0, f.store.batches["b1"].QuantityMutated, "manual no toca camadas no elegidas")
	assert.Equal(t, 4, f.store.batches["b2"].QuantityMutated)
	assert.Equal(t, 6, f.store.batches["b3"].QuantityMutated)
	assert.Equal(t, 25, f.store.flocks["origen"].CurrentQuantity)
}

func TestProcessManual_SobreAsignacionRechazada(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	in := outInput(0)
	in.Lines = []mutation.ManualLineInput{{BatchID: "b1", Quantity: 10}} // b1 solo tiene 5

	_, err := f.uc.ProcessManual(context.Background(), in)
	require.Error(t, err)

	var insufficient *domain.InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "b1", insufficient.BatchID)
	assert.Equal(t, 10, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Available)

	assert.Equal(t, 0, f.store.batches["b1"].QuantityMutated)
	assert.Empty(t, f.store.mutations)
}

func TestProcessManual_CamadaDeOtroLoteRechazada(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)
	f.seedBatch("ajena", "destino", testDay.AddDate(0, 0, -5), 10)

	in := outInput(0)
	in.Lines = []mutation.ManualLineInput{{BatchID: "ajena", Quantity: 3}}

	_, err := f.uc.ProcessManual(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición (coincidencia exacta → reemplazo completo)
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessFifo_CoincidenciaExactaEdita(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	first, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	// Misma tupla (lote, día, dirección, tipo): el motor edita en vez de duplicar.
	second, err := f.uc.ProcessFifo(context.Background(), outInput(8))
	require.NoError(t, err)

	assert.True(t, second.Edited)
	assert.Equal(t, first.MutationID, second.ReplacedMutationID)

	// El estado final equivale a haber aplicado 8 desde cero.
	assert.Equal(t, 5, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 3, f.store.batches["b2"].QuantityMutated)
	assert.Equal(t, 27, f.store.flocks["origen"].CurrentQuantity)
	assert.Equal(t, 8, f.store.flocks["destino"].CurrentQuantity)

	mirror := f.mirrorBatch(t)
	assert.Equal(t, 8, mirror.InitialQuantity, "la camada espejo anterior se retira con la edición")

	// La anterior queda REVERSED (retención con historial), la nueva ACTIVE.
	assert.Equal(t, entity.MutationStatusReversed, f.store.mutations[first.MutationID].Status)
	assert.Equal(t, entity.MutationStatusActive, f.store.mutations[second.MutationID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado / reversión
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_RestauraElEstado(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), testCompany, out.MutationID))

	assert.Equal(t, 0, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 0, f.store.batches["b2"].QuantityMutated)
	assert.Equal(t, 35, f.store.flocks["origen"].CurrentQuantity)
	assert.Equal(t, 0, f.store.flocks["destino"].CurrentQuantity)

	// La camada espejo desaparece al quedar en cero.
	for _, b := range f.store.batches {
		assert.NotEqual(t, "destino", b.FlockID, "no debe quedar camada espejo en el destino")
	}

	// Retención soft: el registro queda marcado REVERSED.
	assert.Equal(t, entity.MutationStatusReversed, f.store.mutations[out.MutationID].Status)
}

func TestDelete_EsIdempotente(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), testCompany, out.MutationID))
	require.NoError(t, f.uc.Delete(context.Background(), testCompany, out.MutationID),
		"revertir una mutación ya revertida es un no-op exitoso")

	assert.Equal(t, 35, f.store.flocks["origen"].CurrentQuantity, "la segunda reversión no duplica la restauración")
}

func TestDelete_HardDeleteEliminaElRegistro(t *testing.T) {
	cfg := mutation.DefaultEngineConfig()
	cfg.HardDeleteOnReversal = true
	f := newEngine(cfg)
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), testCompany, out.MutationID))

	_, exists := f.store.mutations[out.MutationID]
	assert.False(t, exists, "retención hard: la mutación desaparece")
	assert.Equal(t, 35, f.store.flocks["origen"].CurrentQuantity)
}

func TestDelete_DestinoYaConsumido_Conflicto(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	// Alguien consumió parte de la camada espejo en el destino.
	mirror := f.mirrorBatch(t)
	mirror.QuantityMutated = 5

	err = f.uc.Delete(context.Background(), testCompany, out.MutationID)
	assert.ErrorIs(t, err, domain.ErrConflict,
		"no se revierte una mutación cuyo destino ya fue consumido")

	// El rollback deja todo como estaba antes del intento.
	assert.Equal(t, 5, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 23, f.store.flocks["origen"].CurrentQuantity)
	assert.Equal(t, entity.MutationStatusActive, f.store.mutations[out.MutationID].Status)
}

func TestDelete_OtraGranjaProhibido(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	out, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	err = f.uc.Delete(context.Background(), "otra-granja", out.MutationID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, entity.MutationStatusActive, f.store.mutations[out.MutationID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricciones de ingreso
// ──────────────────────────────────────────────────────────────────────────────

func TestRestriccion_MismoLoteMismoDia_BloqueaNueva(t *testing.T) {
	cfg := mutation.DefaultEngineConfig()
	cfg.AllowSameLivestockSameDay = false
	f := newEngine(cfg)
	seedStandard(f)

	// Mutación previa del mismo lote y día pero distinta tupla (otra dirección/tipo):
	// no hay coincidencia exacta, así que la restricción sí aplica.
	f.store.mutations["m-prev"] = &entity.Mutation{
		ID:        "m-prev",
		CompanyID: testCompany,
		FlockID:   "origen",
		Date:      testDay,
		Direction: entity.MutationDirectionIN,
		Kind:      entity.MutationKindExternal,
		Status:    entity.MutationStatusActive,
	}

	_, err := f.uc.ProcessFifo(context.Background(), outInput(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRestrictionViolation)

	var violation *domain.RestrictionViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, mutation.PolicySameLivestockSameDay, violation.Policy)
	assert.Equal(t, "m-prev", violation.ConflictMutationID)

	assert.Len(t, f.store.mutations, 1, "la mutación nueva no debe persistirse")
}

func TestRestriccion_NoAplicaAEdiciones(t *testing.T) {
	cfg := mutation.DefaultEngineConfig()
	cfg.AllowSameLivestockSameDay = false
	f := newEngine(cfg)
	seedStandard(f)

	first, err := f.uc.ProcessFifo(context.Background(), outInput(12))
	require.NoError(t, err)

	// Reaplicar la misma tupla es edición, no ingreso nuevo: la restricción no bloquea.
	second, err := f.uc.ProcessFifo(context.Background(), outInput(8))
	require.NoError(t, err)
	assert.True(t, second.Edited)
	assert.Equal(t, first.MutationID, second.ReplacedMutationID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Preview y proyecciones
// ──────────────────────────────────────────────────────────────────────────────

func TestPreviewFifo_NoTieneEfectos(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	in := outInput(12)
	out, err := f.uc.PreviewFifo(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, out.CanFulfill)
	assert.Equal(t, 12, out.Allocated)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, "b1", out.Lines[0].BatchID)
	assert.Equal(t, 5, out.Lines[0].Quantity)
	assert.Equal(t, "b2", out.Lines[1].BatchID)
	assert.Equal(t, 7, out.Lines[1].Quantity)

	// Sin efectos: nada cambió en el libro.
	assert.Equal(t, 0, f.store.batches["b1"].QuantityMutated)
	assert.Equal(t, 35, f.store.flocks["origen"].CurrentQuantity)
	assert.Empty(t, f.store.mutations)
}

func TestAvailableBatches_ProyeccionFifo(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)
	// b1 totalmente consumido: no debe aparecer.
	f.store.batches["b1"].QuantityMutated = 5

	list, err := f.uc.AvailableBatches(context.Background(), testCompany, "origen")
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "b2", list[0].BatchID)
	assert.Equal(t, 10, list[0].AvailableQuantity)
	assert.Equal(t, "b3", list[1].BatchID)
	assert.Equal(t, 20, list[1].AvailableQuantity)
}

func TestAvailableBatches_LoteAjenoProhibido(t *testing.T) {
	f := newEngine(mutation.DefaultEngineConfig())
	seedStandard(f)

	_, err := f.uc.AvailableBatches(context.Background(), "otra-granja", "origen")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
