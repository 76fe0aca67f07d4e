package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/allocation"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
	"github.com/jhoicas/Avicola-api/pkg/logger"
)

// UseCase orquesta el motor de mutaciones: DuplicateGuard → (reversión si edita) →
// asignación FIFO → aplicación transaccional. Los repos del struct van atados al pool
// (lecturas de validación y preview); toda escritura pasa por TxRunner.
type UseCase struct {
	txRunner     TxRunner
	flockRepo    repository.FlockRepository
	batchRepo    repository.BatchRepository
	mutationRepo repository.MutationRepository
	guard        *DuplicateGuard
	reversal     *ReversalService
	cfg          EngineConfig
	log          *logger.Logger
}

// NewUseCase construye el caso de uso del motor.
func NewUseCase(
	txRunner TxRunner,
	flockRepo repository.FlockRepository,
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	cfg EngineConfig,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		flockRepo:    flockRepo,
		batchRepo:    batchRepo,
		mutationRepo: mutationRepo,
		guard:        NewDuplicateGuard(cfg),
		reversal:     NewReversalService(cfg, log),
		cfg:          cfg,
		log:          log,
	}
}

// Reversal expone el servicio de reversión (lo comparte el flujo de borrado).
func (uc *UseCase) Reversal() *ReversalService { return uc.reversal }

// MutationInputDTO entrada para procesar una mutación.
// Para FIFO: Quantity y el motor elige las camadas. Para MANUAL: Lines explícitas.
// EditMutationID no vacío fuerza el modo edición sobre esa mutación.
type MutationInputDTO struct {
	CompanyID          string
	UserID             string
	FlockID            string
	Quantity           int
	Date               time.Time
	Direction          string
	Kind               string
	Reason             string
	DestinationFlockID string
	DestinationCoopID  string
	EditMutationID     string
	Weight             *decimal.Decimal
	Price              *decimal.Decimal
	Note               string
	Lines              []ManualLineInput
}

// ManualLineInput línea elegida por el usuario en modo MANUAL.
type ManualLineInput struct {
	BatchID  string
	Quantity int
	Weight   *decimal.Decimal
	Price    *decimal.Decimal
	Note     string
}

// PreviewFifo computa el plan FIFO sin efectos (validación/preview de UI). El caller
// debe revisar CanFulfill: un plan con faltante nunca se aplica.
func (uc *UseCase) PreviewFifo(ctx context.Context, in MutationInputDTO) (*dto.AllocationPreviewResponse, error) {
	if _, err := uc.resolveFlock(in.CompanyID, in.FlockID); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 || in.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	batches, err := uc.batchRepo.ListActiveByFlock(in.FlockID)
	if err != nil {
		return nil, err
	}
	plan, err := allocation.BuildPlan(batches, in.Quantity, in.Date, uc.cfg.MaxBatchAgeDays)
	if err != nil {
		return nil, err
	}
	return toPreviewResponse(plan), nil
}

// ProcessFifo procesa una mutación con selección FIFO de camadas. Si el guard detecta
// una mutación ACTIVE con la misma tupla (lote, día, dirección, tipo), cambia a modo
// edición: revierte la existente y aplica la nueva dentro de la misma transacción
// (reemplazo completo, nunca estado parcial).
func (uc *UseCase) ProcessFifo(ctx context.Context, in MutationInputDTO) (*dto.MutationResultResponse, error) {
	return uc.process(ctx, in, entity.MutationMethodFIFO)
}

// ProcessManual procesa una mutación con camadas y cantidades elegidas por el usuario.
// La disponibilidad de cada línea se re-valida al aplicar, sobre filas bloqueadas, para
// cubrir consumo concurrente posterior al preview.
func (uc *UseCase) ProcessManual(ctx context.Context, in MutationInputDTO) (*dto.MutationResultResponse, error) {
	return uc.process(ctx, in, entity.MutationMethodManual)
}

func (uc *UseCase) process(ctx context.Context, in MutationInputDTO, method string) (*dto.MutationResultResponse, error) {
	if err := uc.validate(in, method); err != nil {
		return nil, err
	}
	if _, err := uc.resolveFlock(in.CompanyID, in.FlockID); err != nil {
		return nil, err
	}
	if in.DestinationFlockID != "" {
		if _, err := uc.resolveFlock(in.CompanyID, in.DestinationFlockID); err != nil {
			return nil, err
		}
	}

	// Guard de duplicados y restricciones, antes de tocar el libro.
	guardRes, err := uc.guard.Resolve(uc.mutationRepo, in.CompanyID, in.FlockID, in.Date, in.Direction, in.Kind, in.EditMutationID)
	if err != nil {
		return nil, err
	}
	if len(guardRes.Violations) > 0 {
		return nil, guardRes.Violations[0]
	}
	editID := in.EditMutationID
	if editID == "" && len(guardRes.ExistingMutationIDs) > 0 {
		// Ya existe la mutación para esta tupla: se edita (reemplazo completo).
		editID = guardRes.ExistingMutationIDs[0]
	}

	var result *entity.Mutation
	run := func(
		batchRepo repository.BatchRepository,
		mutationRepo repository.MutationRepository,
		flockRepo repository.FlockRepository,
	) error {
		if editID != "" {
			old, err := mutationRepo.GetForUpdate(editID)
			if err != nil {
				return err
			}
			if old == nil {
				return domain.ErrNotFound
			}
			if old.CompanyID != in.CompanyID {
				return domain.ErrForbidden
			}
			if err := uc.reversal.ReverseInTx(batchRepo, mutationRepo, flockRepo, old); err != nil {
				return err
			}
		}

		m := uc.buildHeader(in, method)
		var err error
		if in.Direction == entity.MutationDirectionIN {
			err = uc.applyIn(batchRepo, mutationRepo, flockRepo, m, in)
		} else if method == entity.MutationMethodFIFO {
			err = uc.applyFifoOut(batchRepo, mutationRepo, flockRepo, m, in)
		} else {
			err = uc.applyManualOut(batchRepo, mutationRepo, flockRepo, m, in)
		}
		if err != nil {
			return err
		}
		result = m
		return nil
	}

	if err := uc.runWithRetry(ctx, run); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("mutation_id", result.ID).
		Str("flock_id", in.FlockID).
		Str("direction", in.Direction).
		Str("method", method).
		Int("total_quantity", result.TotalQuantity()).
		Bool("edited", editID != "").
		Msg("mutación aplicada")

	return &dto.MutationResultResponse{
		Success:            true,
		MutationID:         result.ID,
		TotalQuantity:      result.TotalQuantity(),
		BatchesUsed:        len(result.Lines),
		Edited:             editID != "",
		ReplacedMutationID: editID,
	}, nil
}

// Delete revierte la mutación y la elimina según la política de retención
// (hard: desaparece; soft: queda marcada REVERSED).
func (uc *UseCase) Delete(ctx context.Context, companyID, mutationID string) error {
	run := func(
		batchRepo repository.BatchRepository,
		mutationRepo repository.MutationRepository,
		flockRepo repository.FlockRepository,
	) error {
		m, err := mutationRepo.GetForUpdate(mutationID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if m.CompanyID != companyID {
			return domain.ErrForbidden
		}
		return uc.reversal.ReverseInTx(batchRepo, mutationRepo, flockRepo, m)
	}
	return uc.runWithRetry(ctx, run)
}

// AvailableBatches proyección de camadas con disponibilidad para el selector de UI,
// en orden FIFO.
func (uc *UseCase) AvailableBatches(ctx context.Context, companyID, flockID string) ([]dto.AvailableBatchDTO, error) {
	if _, err := uc.resolveFlock(companyID, flockID); err != nil {
		return nil, err
	}
	batches, err := uc.batchRepo.ListActiveByFlock(flockID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	list := make([]dto.AvailableBatchDTO, 0, len(batches))
	for _, b := range batches {
		if err := b.CheckConsistency(); err != nil {
			return nil, err
		}
		if b.Available() <= 0 {
			continue
		}
		list = append(list, dto.AvailableBatchDTO{
			BatchID:           b.ID,
			StartDate:         b.StartDate,
			AvailableQuantity: b.Available(),
			AgeDays:           b.AgeDays(now),
		})
	}
	return list, nil
}

// GetByID devuelve una mutación con sus líneas (lectura para UI de edición).
func (uc *UseCase) GetByID(ctx context.Context, companyID, mutationID string) (*entity.Mutation, error) {
	m, err := uc.mutationRepo.GetByID(mutationID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if m.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// validate revisa el encabezado antes de abrir transacción (errores de validación
// nunca dejan efectos parciales).
func (uc *UseCase) validate(in MutationInputDTO, method string) error {
	if in.FlockID == "" || in.Kind == "" || in.Date.IsZero() {
		return domain.ErrInvalidInput
	}
	if !entity.ValidDirection(in.Direction) {
		return domain.ErrInvalidInput
	}
	if in.Direction == entity.MutationDirectionOUT {
		if in.DestinationFlockID == "" && in.DestinationCoopID == "" {
			return domain.ErrInvalidInput
		}
		// Auto-mutación: error de validación, no falla del servidor.
		if in.DestinationFlockID == in.FlockID && in.DestinationFlockID != "" {
			return domain.ErrInvalidInput
		}
	}
	if method == entity.MutationMethodManual {
		if in.Direction != entity.MutationDirectionOUT || len(in.Lines) == 0 {
			return domain.ErrInvalidInput
		}
		for _, l := range in.Lines {
			if l.BatchID == "" || l.Quantity <= 0 {
				return domain.ErrInvalidInput
			}
		}
	} else if in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

func (uc *UseCase) resolveFlock(companyID, flockID string) (*entity.Flock, error) {
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
	return flock, nil
}

func (uc *UseCase) buildHeader(in MutationInputDTO, method string) *entity.Mutation {
	now := time.Now()
	m := &entity.Mutation{
		ID:        uuid.New().String(),
		CompanyID: in.CompanyID,
		FlockID:   in.FlockID,
		Date:      in.Date,
		Direction: in.Direction,
		Kind:      in.Kind,
		Reason:    in.Reason,
		Method:    method,
		Status:    entity.MutationStatusActive,
		CreatedBy: in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.DestinationFlockID != "" {
		v := in.DestinationFlockID
		m.DestinationFlockID = &v
	}
	if in.DestinationCoopID != "" {
		v := in.DestinationCoopID
		m.DestinationCoopID = &v
	}
	return m
}

// applyFifoOut computa el plan sobre camadas bloqueadas (FOR UPDATE) y lo aplica.
// El re-cómputo dentro de la transacción es el que vale: dos mutaciones concurrentes
// sobre las mismas camadas se serializan aquí y la segunda ve la disponibilidad real.
func (uc *UseCase) applyFifoOut(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
	in MutationInputDTO,
) error {
	batches, err := batchRepo.ListActiveByFlockForUpdate(in.FlockID)
	if err != nil {
		return err
	}
	plan, err := allocation.BuildPlan(batches, in.Quantity, in.Date, uc.cfg.MaxBatchAgeDays)
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
	for _, pl := range plan.Lines {
		m.Lines = append(m.Lines, entity.MutationLine{
			ID:         uuid.New().String(),
			MutationID: m.ID,
			BatchID:    pl.BatchID,
			Quantity:   pl.Quantity,
			Weight:     in.Weight,
			Price:      in.Price,
			Note:       in.Note,
			Status:     entity.MutationStatusActive,
			CreatedAt:  m.CreatedAt,
		})
	}
	return uc.applyOut(batchRepo, mutationRepo, flockRepo, m, byID)
}

// applyManualOut valida cada línea contra su camada bloqueada y aplica.
func (uc *UseCase) applyManualOut(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
	in MutationInputDTO,
) error {
	byID := make(map[string]*entity.Batch, len(in.Lines))
	for _, l := range in.Lines {
		batch, err := batchRepo.GetForUpdate(l.BatchID)
		if err != nil {
			return err
		}
		if batch == nil || batch.FlockID != in.FlockID {
			return domain.ErrInvalidInput
		}
		byID[batch.ID] = batch
		m.Lines = append(m.Lines, entity.MutationLine{
			ID:         uuid.New().String(),
			MutationID: m.ID,
			BatchID:    l.BatchID,
			Quantity:   l.Quantity,
			Weight:     l.Weight,
			Price:      l.Price,
			Note:       l.Note,
			Status:     entity.MutationStatusActive,
			CreatedAt:  m.CreatedAt,
		})
	}
	return uc.applyOut(batchRepo, mutationRepo, flockRepo, m, byID)
}

// applyOut efectos de una mutación OUT, todo dentro de la transacción del caller:
// incrementa quantity_mutated por línea (re-validando disponible sobre la fila
// bloqueada), descuenta el lote origen, acredita el destino y persiste el registro.
func (uc *UseCase) applyOut(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
	byID map[string]*entity.Batch,
) error {
	total := 0
	for _, line := range m.Lines {
		batch := byID[line.BatchID]
		if batch == nil {
			return domain.ErrInvalidInput
		}
		if batch.Available() < line.Quantity {
			return &domain.InsufficientQuantityError{
				BatchID:   batch.ID,
				Requested: line.Quantity,
				Available: batch.Available(),
				Shortfall: line.Quantity - batch.Available(),
			}
		}
		batch.QuantityMutated += line.Quantity
		if err := batch.CheckConsistency(); err != nil {
			return err
		}
		batch.UpdatedAt = time.Now()
		if err := batchRepo.UpdateCounters(batch); err != nil {
			return err
		}
		total += line.Quantity
	}

	if err := flockRepo.AdjustCurrentQuantity(m.FlockID, -total); err != nil {
		return err
	}

	if m.DestinationFlockID != nil {
		if err := uc.creditDestination(batchRepo, flockRepo, m, *m.DestinationFlockID, total); err != nil {
			return err
		}
	} else if m.DestinationCoopID != nil && uc.cfg.CreateDestinationFlock {
		destFlock, err := uc.createDestinationFlock(flockRepo, m, total)
		if err != nil {
			return err
		}
		m.DestinationFlockID = &destFlock.ID
		mirror, err := uc.createMirrorBatch(batchRepo, destFlock.ID, m.Date, total)
		if err != nil {
			return err
		}
		m.DestinationBatchID = &mirror.ID
	}

	return mutationRepo.Create(m)
}

// creditDestination acredita un lote destino existente: contador + camada espejo con
// la fecha de la mutación, para que el destino también consuma FIFO correctamente.
func (uc *UseCase) creditDestination(
	batchRepo repository.BatchRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
	destFlockID string,
	total int,
) error {
	dest, err := flockRepo.GetForUpdate(destFlockID)
	if err != nil {
		return err
	}
	if dest == nil {
		return domain.ErrNotFound
	}
	if err := flockRepo.AdjustCurrentQuantity(destFlockID, total); err != nil {
		return err
	}
	mirror, err := uc.createMirrorBatch(batchRepo, destFlockID, m.Date, total)
	if err != nil {
		return err
	}
	m.DestinationBatchID = &mirror.ID
	return nil
}

func (uc *UseCase) createDestinationFlock(flockRepo repository.FlockRepository, m *entity.Mutation, total int) (*entity.Flock, error) {
	now := time.Now()
	flock := &entity.Flock{
		ID:              uuid.New().String(),
		CompanyID:       m.CompanyID,
		CoopID:          *m.DestinationCoopID,
		Name:            fmt.Sprintf("traslado %s", m.Date.Format("2006-01-02")),
		StartDate:       m.Date,
		InitialQuantity: total,
		CurrentQuantity: 0, // el crédito lo hace AdjustCurrentQuantity
		Status:          entity.FlockStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := flockRepo.Create(flock); err != nil {
		return nil, err
	}
	if err := flockRepo.AdjustCurrentQuantity(flock.ID, total); err != nil {
		return nil, err
	}
	return flock, nil
}

func (uc *UseCase) createMirrorBatch(batchRepo repository.BatchRepository, flockID string, date time.Time, total int) (*entity.Batch, error) {
	now := time.Now()
	batch := &entity.Batch{
		ID:              uuid.New().String(),
		FlockID:         flockID,
		StartDate:       date,
		InitialQuantity: total,
		Status:          entity.BatchStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := batchRepo.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// applyIn efectos de una mutación IN: crea la camada receptora con la cantidad
// completa, una línea que la referencia y acredita el lote.
func (uc *UseCase) applyIn(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
	m *entity.Mutation,
	in MutationInputDTO,
) error {
	batch, err := uc.createMirrorBatch(batchRepo, in.FlockID, in.Date, in.Quantity)
	if err != nil {
		return err
	}
	m.Lines = append(m.Lines, entity.MutationLine{
		ID:         uuid.New().String(),
		MutationID: m.ID,
		BatchID:    batch.ID,
		Quantity:   in.Quantity,
		Weight:     in.Weight,
		Price:      in.Price,
		Note:       in.Note,
		Status:     entity.MutationStatusActive,
		CreatedAt:  m.CreatedAt,
	})
	if err := flockRepo.AdjustCurrentQuantity(in.FlockID, in.Quantity); err != nil {
		return err
	}
	return mutationRepo.Create(m)
}

// runWithRetry ejecuta la transacción y reintenta exactamente una vez ante un
// conflicto de serialización (dos mutaciones compitiendo por las mismas camadas).
func (uc *UseCase) runWithRetry(ctx context.Context, fn func(
	repository.BatchRepository,
	repository.MutationRepository,
	repository.FlockRepository,
) error) error {
	err := uc.txRunner.Run(ctx, fn)
	if errors.Is(err, domain.ErrTxConflict) {
		uc.log.Warn().Err(err).Msg("conflicto de serialización, reintentando una vez")
		err = uc.txRunner.Run(ctx, fn)
	}
	return err
}

func toPreviewResponse(plan allocation.Plan) *dto.AllocationPreviewResponse {
	resp := &dto.AllocationPreviewResponse{
		CanFulfill:   plan.CanFulfill(),
		Requested:    plan.Requested,
		Allocated:    plan.Allocated,
		Shortfall:    plan.Shortfall,
		BatchesCount: plan.BatchesUsed(),
	}
	for _, l := range plan.Lines {
		resp.Lines = append(resp.Lines, dto.PreviewLineDTO{
			BatchID:         l.BatchID,
			StartDate:       l.StartDate,
			Quantity:        l.Quantity,
			AvailableBefore: l.AvailableBefore,
		})
	}
	return resp
}
