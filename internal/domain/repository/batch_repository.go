package repository

import "github.com/jhoicas/Avicola-api/internal/domain/entity"

// BatchRepository define el puerto para camadas. Las variantes ForUpdate bloquean las
// filas (SELECT FOR UPDATE) y deben usarse para todo cómputo que vaya a escribir, de
// modo que la disponibilidad se re-valide sobre filas bloqueadas al aplicar.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	GetForUpdate(id string) (*entity.Batch, error)
	// ListActiveByFlock devuelve camadas ACTIVE del lote en orden FIFO
	// (start_date asc, id asc). Solo lectura, apto para preview.
	ListActiveByFlock(flockID string) ([]*entity.Batch, error)
	// ListActiveByFlockForUpdate igual que ListActiveByFlock pero con FOR UPDATE.
	ListActiveByFlockForUpdate(flockID string) ([]*entity.Batch, error)
	// UpdateCounters persiste initial_quantity, contadores y status de la camada.
	UpdateCounters(batch *entity.Batch) error
	Delete(id string) error
}
