package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/Avicola-api/internal/domain"
)

// Estados de una camada.
const (
	BatchStatusActive = "ACTIVE"
	BatchStatusClosed = "CLOSED"
)

// Batch representa una camada: sub-cohorte de un lote que comparte fecha de ingreso,
// usada para el consumo FIFO. InitialQuantity es inmutable; los tres contadores
// acumulados solo los muta su subsistema respectivo (bajas, ventas, mutaciones).
type Batch struct {
	ID                string
	FlockID           string
	StartDate         time.Time
	InitialQuantity   int
	QuantityDepletion int
	QuantitySales     int
	QuantityMutated   int
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Available devuelve la cantidad disponible de la camada. Es el único punto donde se
// calcula la expresión inicial - bajas - ventas - mutado: todo consumidor pasa por aquí.
func (b *Batch) Available() int {
	return b.InitialQuantity - b.QuantityDepletion - b.QuantitySales - b.QuantityMutated
}

// AgeDays devuelve la edad de la camada en días calendario respecto de asOf.
func (b *Batch) AgeDays(asOf time.Time) int {
	days := int(asOf.Sub(b.StartDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CheckConsistency valida el invariante de conservación: ningún contador negativo y
// disponible >= 0. Cualquier violación es LedgerCorruption, nunca se ajusta en silencio.
func (b *Batch) CheckConsistency() error {
	if b.QuantityDepletion < 0 || b.QuantitySales < 0 || b.QuantityMutated < 0 {
		return &domain.LedgerCorruptionError{
			BatchID: b.ID,
			Detail: fmt.Sprintf("contador negativo (bajas=%d ventas=%d mutado=%d)",
				b.QuantityDepletion, b.QuantitySales, b.QuantityMutated),
		}
	}
	if b.Available() < 0 {
		return &domain.LedgerCorruptionError{
			BatchID: b.ID,
			Detail: fmt.Sprintf("disponible negativo: inicial=%d bajas=%d ventas=%d mutado=%d",
				b.InitialQuantity, b.QuantityDepletion, b.QuantitySales, b.QuantityMutated),
		}
	}
	return nil
}
