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

var _ repository.FlockRepository = (*FlockRepo)(nil)

const flockColumns = `id, company_id, coop_id, name, start_date, initial_quantity, current_quantity, status, created_at, updated_at`

// FlockRepo implementación de FlockRepository sobre PostgreSQL (usable con pool o tx).
type FlockRepo struct {
	q Querier
}

// NewFlockRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewFlockRepository(q Querier) *FlockRepo {
	return &FlockRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *FlockRepo) Create(flock *entity.Flock) error {
	query := `
		INSERT INTO flocks (` + flockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		flock.ID, flock.CompanyID, flock.CoopID, flock.Name, flock.StartDate,
		flock.InitialQuantity, flock.CurrentQuantity, flock.Status,
		flock.CreatedAt, flock.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create flock: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; nil si no existe.
func (r *FlockRepo) GetByID(id string) (*entity.Flock, error) {
	query := `SELECT ` + flockColumns + ` FROM flocks WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene un lote y bloquea la fila (SELECT FOR UPDATE).
func (r *FlockRepo) GetForUpdate(id string) (*entity.Flock, error) {
	query := `SELECT ` + flockColumns + ` FROM flocks WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// AdjustCurrentQuantity suma delta (positivo o negativo) a current_quantity.
func (r *FlockRepo) AdjustCurrentQuantity(id string, delta int) error {
	query := `
		UPDATE flocks
		SET current_quantity = current_quantity + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust flock quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista lotes de una granja con paginación, más recientes primero.
func (r *FlockRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Flock, error) {
	query := `
		SELECT ` + flockColumns + `
		FROM flocks WHERE company_id = $1
		ORDER BY start_date DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list flocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Flock
	for rows.Next() {
		var f entity.Flock
		if err := scanFlock(rows, &f); err != nil {
			return nil, fmt.Errorf("scan flock: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

// Update actualiza nombre y estado del lote. InitialQuantity no se toca nunca.
func (r *FlockRepo) Update(flock *entity.Flock) error {
	query := `
		UPDATE flocks
		SET name = $2, status = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		flock.ID, flock.Name, flock.Status, flock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update flock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FlockRepo) scanOne(query string, args ...any) (*entity.Flock, error) {
	var f entity.Flock
	err := scanFlock(r.q.QueryRow(context.Background(), query, args...), &f)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flock: %w", err)
	}
	return &f, nil
}

func scanFlock(row pgx.Row, f *entity.Flock) error {
	return row.Scan(
		&f.ID, &f.CompanyID, &f.CoopID, &f.Name, &f.StartDate,
		&f.InitialQuantity, &f.CurrentQuantity, &f.Status,
		&f.CreatedAt, &f.UpdatedAt,
	)
}
