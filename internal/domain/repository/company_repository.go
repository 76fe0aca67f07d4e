package repository

import "github.com/jhoicas/Avicola-api/internal/domain/entity"

// CompanyRepository define el puerto de persistencia para granjas/empresas.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	List(limit, offset int) ([]*entity.Company, error)
}
