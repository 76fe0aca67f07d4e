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

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, flock_id, start_date, initial_quantity, quantity_depletion, quantity_sales, quantity_mutated, status, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de camadas. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste una camada nueva.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.FlockID, batch.StartDate, batch.InitialQuantity,
		batch.QuantityDepletion, batch.QuantitySales, batch.QuantityMutated,
		batch.Status, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene una camada por ID; nil si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene una camada y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// ListActiveByFlock devuelve camadas ACTIVE del lote en orden FIFO (start_date asc,
// id asc como desempate estable).
func (r *BatchRepo) ListActiveByFlock(flockID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches WHERE flock_id = $1 AND status = 'ACTIVE'
		ORDER BY start_date ASC, id ASC`
	return r.list(query, flockID)
}

// ListActiveByFlockForUpdate igual que ListActiveByFlock pero bloqueando las filas
// (SELECT FOR UPDATE), para que el plan FIFO se calcule sobre filas que nadie más
// puede mutar hasta el commit.
func (r *BatchRepo) ListActiveByFlockForUpdate(flockID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches WHERE flock_id = $1 AND status = 'ACTIVE'
		ORDER BY start_date ASC, id ASC
		FOR UPDATE`
	return r.list(query, flockID)
}

// UpdateCounters persiste initial_quantity, los contadores acumulados y el status.
func (r *BatchRepo) UpdateCounters(batch *entity.Batch) error {
	query := `
		UPDATE batches
		SET initial_quantity = $2, quantity_depletion = $3, quantity_sales = $4,
		    quantity_mutated = $5, status = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.InitialQuantity, batch.QuantityDepletion,
		batch.QuantitySales, batch.QuantityMutated, batch.Status,
	)
	if err != nil {
		return fmt.Errorf("update batch counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina físicamente una camada (solo camadas espejo vaciadas al revertir).
func (r *BatchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) scanOne(query string, args ...any) (*entity.Batch, error) {
	var b entity.Batch
	err := scanBatch(r.q.QueryRow(context.Background(), query, args...), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

func (r *BatchRepo) list(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := scanBatch(rows, &b); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

func scanBatch(row pgx.Row, b *entity.Batch) error {
	return row.Scan(
		&b.ID, &b.FlockID, &b.StartDate, &b.InitialQuantity,
		&b.QuantityDepletion, &b.QuantitySales, &b.QuantityMutated,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
}
