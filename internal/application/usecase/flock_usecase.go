package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

// FlockUseCase casos de uso para lotes. La creación siembra la primera camada del lote
// en la misma transacción, de modo que el asignador FIFO siempre encuentra al menos
// una camada disponible.
type FlockUseCase struct {
	txRunner  mutation.TxRunner
	flockRepo repository.FlockRepository
	coopRepo  repository.CoopRepository
}

// NewFlockUseCase construye el caso de uso.
func NewFlockUseCase(txRunner mutation.TxRunner, flockRepo repository.FlockRepository, coopRepo repository.CoopRepository) *FlockUseCase {
	return &FlockUseCase{txRunner: txRunner, flockRepo: flockRepo, coopRepo: coopRepo}
}

// Create crea un lote y su camada inicial de forma atómica.
func (uc *FlockUseCase) Create(ctx context.Context, companyID string, in dto.CreateFlockRequest) (*dto.FlockResponse, error) {
	if in.Name == "" || in.CoopID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialQuantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	coop, err := uc.coopRepo.GetByID(in.CoopID)
	if err != nil {
		return nil, err
	}
	if coop == nil {
		return nil, domain.ErrNotFound
	}
	if coop.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	flock := &entity.Flock{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		CoopID:          in.CoopID,
		Name:            in.Name,
		StartDate:       startDate,
		InitialQuantity: in.InitialQuantity,
		CurrentQuantity: in.InitialQuantity,
		Status:          entity.FlockStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	batch := &entity.Batch{
		ID:              uuid.New().String(),
		FlockID:         flock.ID,
		StartDate:       startDate,
		InitialQuantity: in.InitialQuantity,
		Status:          entity.BatchStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MutationRepository,
		flockRepo repository.FlockRepository,
	) error {
		if err := flockRepo.Create(flock); err != nil {
			return err
		}
		return batchRepo.Create(batch)
	})
	if err != nil {
		return nil, err
	}
	return toFlockResponse(flock), nil
}

// GetByID obtiene un lote validando pertenencia a la granja.
func (uc *FlockUseCase) GetByID(companyID, id string) (*dto.FlockResponse, error) {
	flock, err := uc.flockRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if flock == nil {
		return nil, nil
	}
	if flock.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toFlockResponse(flock), nil
}

// List lista lotes de la granja con paginación.
func (uc *FlockUseCase) List(companyID string, limit, offset int) (*dto.FlockListResponse, error) {
	list, err := uc.flockRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FlockResponse, 0, len(list))
	for _, f := range list {
		items = append(items, *toFlockResponse(f))
	}
	return &dto.FlockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Close marca un lote como cerrado. No toca saldos.
func (uc *FlockUseCase) Close(companyID, id string) (*dto.FlockResponse, error) {
	flock, err := uc.flockRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if flock == nil {
		return nil, domain.ErrNotFound
	}
	if flock.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if flock.Status == entity.FlockStatusClosed {
		return toFlockResponse(flock), nil
	}
	flock.Status = entity.FlockStatusClosed
	flock.UpdatedAt = time.Now()
	if err := uc.flockRepo.Update(flock); err != nil {
		return nil, err
	}
	return toFlockResponse(flock), nil
}

func toFlockResponse(f *entity.Flock) *dto.FlockResponse {
	if f == nil {
		return nil
	}
	return &dto.FlockResponse{
		ID:              f.ID,
		CompanyID:       f.CompanyID,
		CoopID:          f.CoopID,
		Name:            f.Name,
		StartDate:       f.StartDate,
		InitialQuantity: f.InitialQuantity,
		CurrentQuantity: f.CurrentQuantity,
		Status:          f.Status,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}
