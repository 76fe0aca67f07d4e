package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
)

func TestBatch_Available(t *testing.T) {
	b := &entity.Batch{
		InitialQuantity:   100,
		QuantityDepletion: 5,
		QuantitySales:     15,
		QuantityMutated:   30,
	}
	assert.Equal(t, 50, b.Available())
}

func TestBatch_AgeDays(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := &entity.Batch{StartDate: start}

	assert.Equal(t, 14, b.AgeDays(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
	// Fecha anterior al ingreso: la edad nunca es negativa.
	assert.Equal(t, 0, b.AgeDays(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)))
}

func TestBatch_CheckConsistency_OK(t *testing.T) {
	b := &entity.Batch{InitialQuantity: 10, QuantityMutated: 10}
	assert.NoError(t, b.CheckConsistency(), "disponible cero es consistente")
}

func TestBatch_CheckConsistency_ContadorNegativo(t *testing.T) {
	b := &entity.Batch{ID: "b1", InitialQuantity: 10, QuantitySales: -1}

	err := b.CheckConsistency()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLedgerCorruption)

	var corr *domain.LedgerCorruptionError
	require.ErrorAs(t, err, &corr)
	assert.Equal(t, "b1", corr.BatchID)
}

func TestBatch_CheckConsistency_DisponibleNegativo(t *testing.T) {
	b := &entity.Batch{ID: "b2", InitialQuantity: 10, QuantityMutated: 11}

	err := b.CheckConsistency()
	assert.ErrorIs(t, err, domain.ErrLedgerCorruption)
}
