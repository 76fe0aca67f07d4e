package repository

import (
	"time"

	"github.com/jhoicas/Avicola-api/internal/domain/entity"
)

// MutationFilter filtra mutaciones ACTIVE. Date compara por día calendario, no por
// timestamp. Los campos vacíos no filtran.
type MutationFilter struct {
	CompanyID string
	FlockID   string
	Date      *time.Time
	Direction string
	Kind      string
}

// MutationRepository define el puerto para el registro de mutaciones y sus líneas.
type MutationRepository interface {
	// Create persiste cabecera y líneas en una sola operación lógica.
	Create(m *entity.Mutation) error
	// GetByID devuelve la mutación con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Mutation, error)
	// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
	GetForUpdate(id string) (*entity.Mutation, error)
	// FindActive devuelve mutaciones ACTIVE que cumplan el filtro, más antiguas primero.
	FindActive(f MutationFilter) ([]*entity.Mutation, error)
	// MarkReversed marca cabecera y líneas como REVERSED.
	MarkReversed(id string, at time.Time) error
	// Delete elimina físicamente cabecera y líneas (política de retención hard-delete).
	Delete(id string) error
}
