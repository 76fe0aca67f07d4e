package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

// CoopUseCase casos de uso CRUD para galpones.
type CoopUseCase struct {
	repo repository.CoopRepository
}

// NewCoopUseCase construye el caso de uso.
func NewCoopUseCase(repo repository.CoopRepository) *CoopUseCase {
	return &CoopUseCase{repo: repo}
}

// Create crea un nuevo galpón.
func (uc *CoopUseCase) Create(companyID string, in dto.CreateCoopRequest) (*dto.CoopResponse, error) {
	now := time.Now()
	coop := &entity.Coop{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Location:  in.Location,
		Capacity:  in.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(coop); err != nil {
		return nil, err
	}
	return toCoopResponse(coop), nil
}

// GetByID obtiene un galpón por ID.
func (uc *CoopUseCase) GetByID(id string) (*dto.CoopResponse, error) {
	coop, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coop == nil {
		return nil, nil
	}
	return toCoopResponse(coop), nil
}

// List lista galpones por granja con paginación.
func (uc *CoopUseCase) List(companyID string, limit, offset int) (*dto.CoopListResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CoopResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCoopResponse(c))
	}
	return &dto.CoopListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toCoopResponse(c *entity.Coop) *dto.CoopResponse {
	if c == nil {
		return nil
	}
	return &dto.CoopResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		Location:  c.Location,
		Capacity:  c.Capacity,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
