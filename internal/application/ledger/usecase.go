package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/allocation"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
	"github.com/jhoicas/Avicola-api/pkg/logger"
)

// Contadores de camada que mantiene este libro.
const (
	counterDepletion = "depletion"
	counterSales     = "sales"
)

// UseCase registra bajas (mortalidad/descarte) y ventas de un lote, consumiendo
// camadas en orden FIFO igual que el motor de mutaciones, sobre filas bloqueadas y en
// una sola transacción. Mantiene quantity_depletion y quantity_sales, los dos
// contadores hermanos de quantity_mutated en el invariante de conservación.
type UseCase struct {
	txRunner  mutation.TxRunner
	flockRepo repository.FlockRepository
	cfg       mutation.EngineConfig
	log       *logger.Logger
}

// NewUseCase construye el caso de uso del libro de bajas/ventas.
func NewUseCase(txRunner mutation.TxRunner, flockRepo repository.FlockRepository, cfg mutation.EngineConfig, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, flockRepo: flockRepo, cfg: cfg, log: log}
}

// DepletionInputDTO entrada para registrar bajas.
type DepletionInputDTO struct {
	CompanyID string
	FlockID   string
	Quantity  int
	Date      time.Time
	Reason    string
}

// SalesInputDTO entrada para registrar una venta.
type SalesInputDTO struct {
	CompanyID string
	FlockID   string
	Quantity  int
	Date      time.Time
	UnitPrice *decimal.Decimal
	Note      string
}

// RecordDepletion consume FIFO la cantidad indicada incrementando quantity_depletion
// y descuenta el saldo vivo del lote.
func (uc *UseCase) RecordDepletion(ctx context.Context, in DepletionInputDTO) (*dto.LedgerResultResponse, error) {
	return uc.record(ctx, in.CompanyID, in.FlockID, in.Quantity, in.Date, counterDepletion, nil)
}

// RecordSales consume FIFO la cantidad vendida incrementando quantity_sales; si hay
// precio unitario, reporta el monto total de la venta.
func (uc *UseCase) RecordSales(ctx context.Context, in SalesInputDTO) (*dto.LedgerResultResponse, error) {
	return uc.record(ctx, in.CompanyID, in.FlockID, in.Quantity, in.Date, counterSales, in.UnitPrice)
}

func (uc *UseCase) record(ctx context.Context, companyID, flockID string, quantity int, date time.Time, counter string, unitPrice *decimal.Decimal) (*dto.LedgerResultResponse, error) {
	if flockID == "" || quantity <= 0 || date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	flock, err := uc.flockRepo.GetByID(flockID)
	if err != nil {
		return nil, err
	}
	if flock == nil {
		return nil, domain.ErrNotFound
	}
	if flock.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	batchesUsed := 0
	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MutationRepository,
		flockRepo repository.FlockRepository,
	) error {
		batches, err := batchRepo.ListActiveByFlockForUpdate(flockID)
		if err != nil {
			return err
		}
		plan, err := allocation.BuildPlan(batches, quantity, date, uc.cfg.MaxBatchAgeDays)
		if err != nil {
			return err
		}
		if !plan.CanFulfill() {
			return &domain.InsufficientQuantityError{
				Requested: plan.Requested,
				Available: plan.Allocated,
				Shortfall: plan.Shortfall,
			}
		}
		byID := make(map[string]*entity.Batch, len(batches))
		for _, b := range batches {
			byID[b.ID] = b
		}
		for _, line := range plan.Lines {
			batch := byID[line.BatchID]
			switch counter {
			case counterDepletion:
				batch.QuantityDepletion += line.Quantity
			case counterSales:
				batch.QuantitySales += line.Quantity
			}
			if err := batch.CheckConsistency(); err != nil {
				return err
			}
			batch.UpdatedAt = time.Now()
			if err := batchRepo.UpdateCounters(batch); err != nil {
				return err
			}
		}
		batchesUsed = plan.BatchesUsed()
		return flockRepo.AdjustCurrentQuantity(flockID, -quantity)
	})
	if err != nil {
		return nil, err
	}

	result := &dto.LedgerResultResponse{
		Success:       true,
		TotalQuantity: quantity,
		BatchesUsed:   batchesUsed,
	}
	if counter == counterSales && unitPrice != nil {
		amount := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		result.TotalAmount = &amount
	}

	uc.log.Info().
		Str("flock_id", flockID).
		Str("counter", counter).
		Int("quantity", quantity).
		Int("batches_used", batchesUsed).
		Msg("registro del libro aplicado")
	return result, nil
}
