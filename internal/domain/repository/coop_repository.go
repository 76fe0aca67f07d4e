package repository

import "github.com/jhoicas/Avicola-api/internal/domain/entity"

// CoopRepository define el puerto CRUD para galpones.
type CoopRepository interface {
	Create(coop *entity.Coop) error
	GetByID(id string) (*entity.Coop, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Coop, error)
	Update(coop *entity.Coop) error
	Delete(id string) error
}
