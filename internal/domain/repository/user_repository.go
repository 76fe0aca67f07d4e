package repository

import "github.com/jhoicas/Avicola-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para usuarios (soporte de auth).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndCompany(email, companyID string) (*entity.User, error)
}
