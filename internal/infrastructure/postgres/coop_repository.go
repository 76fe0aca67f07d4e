package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

var _ repository.CoopRepository = (*CoopRepo)(nil)

// CoopRepo implementación de CoopRepository sobre PostgreSQL (usable con pool o tx).
type CoopRepo struct {
	q Querier
}

// NewCoopRepository construye el adaptador de galpones. Pasar pool o tx (Querier).
func NewCoopRepository(q Querier) *CoopRepo {
	return &CoopRepo{q: q}
}

// Create persiste un galpón nuevo.
func (r *CoopRepo) Create(coop *entity.Coop) error {
	query := `
		INSERT INTO coops (id, company_id, name, location, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		coop.ID, coop.CompanyID, coop.Name, coop.Location, coop.Capacity,
		coop.CreatedAt, coop.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create coop: %w", err)
	}
	return nil
}

// GetByID obtiene un galpón por ID; nil si no existe.
func (r *CoopRepo) GetByID(id string) (*entity.Coop, error) {
	query := `
		SELECT id, company_id, name, location, capacity, created_at, updated_at
		FROM coops WHERE id = $1`
	var c entity.Coop
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Location, &c.Capacity, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coop: %w", err)
	}
	return &c, nil
}

// ListByCompany lista galpones de una granja con paginación.
func (r *CoopRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Coop, error) {
	query := `
		SELECT id, company_id, name, location, capacity, created_at, updated_at
		FROM coops WHERE company_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list coops: %w", err)
	}
	defer rows.Close()
	var list []*entity.Coop
	for rows.Next() {
		var c entity.Coop
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Location, &c.Capacity,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan coop: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos del galpón.
func (r *CoopRepo) Update(coop *entity.Coop) error {
	query := `
		UPDATE coops
		SET name = $2, location = $3, capacity = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		coop.ID, coop.Name, coop.Location, coop.Capacity,
	)
	if err != nil {
		return fmt.Errorf("update coop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un galpón.
func (r *CoopRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM coops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
