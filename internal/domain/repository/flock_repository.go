package repository

import "github.com/jhoicas/Avicola-api/internal/domain/entity"

// FlockRepository define el puerto para lotes. CurrentQuantity se ajusta únicamente
// dentro de transacciones del motor (MutationProcessor/ReversalService/libro de bajas).
type FlockRepository interface {
	Create(flock *entity.Flock) error
	GetByID(id string) (*entity.Flock, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Flock, error)
	// AdjustCurrentQuantity suma delta (positivo o negativo) a current_quantity.
	AdjustCurrentQuantity(id string, delta int) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.Flock, error)
	Update(flock *entity.Flock) error
}
