package mutation

import (
	"context"

	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Lectura del plan y escritura del commit ocurren bajo el mismo scope:
// es la frontera atómica del motor (incluida la reversión previa al editar).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		mutationRepo repository.MutationRepository,
		flockRepo repository.FlockRepository,
	) error) error
}
