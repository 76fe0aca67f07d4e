package mutation

import (
	"fmt"
	"time"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
	"github.com/jhoicas/Avicola-api/pkg/logger"
)

// ReversalService deshace el efecto de una mutación sobre camadas y lotes
// (transacción compensatoria). Se usa en el flujo de borrado y como primer paso del
// flujo de edición, siempre dentro de la misma transacción que la re-aplicación.
type ReversalService struct {
	cfg EngineConfig
	log *logger.Logger
}

// NewReversalService construye el servicio de reversión.
func NewReversalService(cfg EngineConfig, log *logger.Logger) *ReversalService {
	return &ReversalService{cfg: cfg, log: log}
}

// ReverseInTx revierte la mutación usando repositorios atados a la transacción del
// caller. Revertir una mutación ya REVERSED es un no-op exitoso (los reintentos del
// flujo de edición quedan seguros). Según la política de retención, la mutación queda
// marcada REVERSED o se elimina físicamente.
func (s *ReversalService) ReverseInTx(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
) error {
	if m.Status == entity.MutationStatusReversed {
		return nil
	}

	total := m.TotalQuantity()

	for i := range m.Lines {
		line := &m.Lines[i]
		if line.Status != entity.MutationStatusActive {
			continue
		}
		batch, err := batchRepo.GetForUpdate(line.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return &domain.LedgerCorruptionError{
				BatchID: line.BatchID,
				Detail:  fmt.Sprintf("línea %s de la mutación %s quedó huérfana", line.ID, m.ID),
			}
		}
		switch m.Direction {
		case entity.MutationDirectionOUT:
			// La salida había incrementado quantity_mutated: restaurar disponibilidad.
			batch.QuantityMutated -= line.Quantity
			if err := batch.CheckConsistency(); err != nil {
				return err
			}
			batch.UpdatedAt = time.Now()
			if err := batchRepo.UpdateCounters(batch); err != nil {
				return err
			}
		case entity.MutationDirectionIN:
			// El ingreso había creado la camada: encogerla, exigiendo que nadie la
			// haya consumido todavía.
			if err := s.shrinkBatch(batchRepo, batch, line.Quantity); err != nil {
				return err
			}
		default:
			return domain.ErrInvalidInput
		}
	}

	// Revertir los contadores de lote en sentido contrario al aplicado.
	switch m.Direction {
	case entity.MutationDirectionOUT:
		if err := flockRepo.AdjustCurrentQuantity(m.FlockID, total); err != nil {
			return err
		}
		if m.DestinationFlockID != nil {
			if err := flockRepo.AdjustCurrentQuantity(*m.DestinationFlockID, -total); err != nil {
				return err
			}
		}
		if m.DestinationBatchID != nil {
			destBatch, err := batchRepo.GetForUpdate(*m.DestinationBatchID)
			if err != nil {
				return err
			}
			if destBatch == nil {
				return &domain.LedgerCorruptionError{
					BatchID: *m.DestinationBatchID,
					Detail:  fmt.Sprintf("camada espejo de la mutación %s no existe", m.ID),
				}
			}
			if err := s.shrinkBatch(batchRepo, destBatch, total); err != nil {
				return err
			}
		}
	case entity.MutationDirectionIN:
		if err := flockRepo.AdjustCurrentQuantity(m.FlockID, -total); err != nil {
			return err
		}
	}

	if s.cfg.HardDeleteOnReversal {
		if err := mutationRepo.Delete(m.ID); err != nil {
			return err
		}
	} else {
		if err := mutationRepo.MarkReversed(m.ID, time.Now()); err != nil {
			return err
		}
	}
	m.Status = entity.MutationStatusReversed
	for i := range m.Lines {
		m.Lines[i].Status = entity.MutationStatusReversed
	}

	s.log.Info().
		Str("mutation_id", m.ID).
		Str("flock_id", m.FlockID).
		Str("direction", m.Direction).
		Int("total_quantity", total).
		Bool("hard_delete", s.cfg.HardDeleteOnReversal).
		Msg("mutación revertida")
	return nil
}

// shrinkBatch reduce initial_quantity de una camada creada por la mutación que se
// revierte. Si la camada ya fue consumida (disponible < cantidad a retirar) hay
// dependencias aguas abajo y la reversión se rechaza con ErrConflict.
func (s *ReversalService) shrinkBatch(batchRepo repository.BatchRepository, batch *entity.Batch, qty int) error {
	if batch.Available() < qty {
		return fmt.Errorf("la camada %s ya fue consumida en el destino: %w", batch.ID, domain.ErrConflict)
	}
	batch.InitialQuantity -= qty
	if batch.InitialQuantity == 0 {
		return batchRepo.Delete(batch.ID)
	}
	if err := batch.CheckConsistency(); err != nil {
		return err
	}
	batch.UpdatedAt = time.Now()
	return batchRepo.UpdateCounters(batch)
}
