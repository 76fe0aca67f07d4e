package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

var _ repository.MutationRepository = (*MutationRepo)(nil)

const mutationColumns = `id, company_id, flock_id, destination_flock_id, destination_coop_id, destination_batch_id, date, direction, kind, reason, method, status, created_by, created_at, updated_at`

const mutationLineColumns = `id, mutation_id, batch_id, quantity, weight, price, note, status, created_at`

// MutationRepo implementación de MutationRepository sobre PostgreSQL (usable con pool o tx).
type MutationRepo struct {
	q Querier
}

// NewMutationRepository construye el adaptador de mutaciones. Pasar pool o tx (Querier).
func NewMutationRepository(q Querier) *MutationRepo {
	return &MutationRepo{q: q}
}

// Create persiste la cabecera y todas sus líneas. Debe llamarse dentro de una tx.
func (r *MutationRepo) Create(m *entity.Mutation) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO mutations (` + mutationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.FlockID, m.DestinationFlockID, m.DestinationCoopID,
		m.DestinationBatchID, m.Date, m.Direction, m.Kind, m.Reason, m.Method,
		m.Status, createdBy, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create mutation: %w", err)
	}
	lineQuery := `
		INSERT INTO mutation_lines (` + mutationLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := range m.Lines {
		l := &m.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.MutationID = m.ID
		_, err := r.q.Exec(context.Background(), lineQuery,
			l.ID, l.MutationID, l.BatchID, l.Quantity, l.Weight, l.Price,
			l.Note, l.Status, l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create mutation line: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la mutación con sus líneas; nil si no existe.
func (r *MutationRepo) GetByID(id string) (*entity.Mutation, error) {
	query := `SELECT ` + mutationColumns + ` FROM mutations WHERE id = $1`
	return r.getOne(query, id)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *MutationRepo) GetForUpdate(id string) (*entity.Mutation, error) {
	query := `SELECT ` + mutationColumns + ` FROM mutations WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

// FindActive devuelve mutaciones ACTIVE que cumplan el filtro, más antiguas primero.
// Date compara por día calendario (date::date).
func (r *MutationRepo) FindActive(f repository.MutationFilter) ([]*entity.Mutation, error) {
	query := `SELECT ` + mutationColumns + ` FROM mutations WHERE status = 'ACTIVE'`
	args := []any{}
	pos := 1
	if f.CompanyID != "" {
		query += fmt.Sprintf(" AND company_id = $%d", pos)
		args = append(args, f.CompanyID)
		pos++
	}
	if f.FlockID != "" {
		query += fmt.Sprintf(" AND flock_id = $%d", pos)
		args = append(args, f.FlockID)
		pos++
	}
	if f.Date != nil {
		query += fmt.Sprintf(" AND date::date = $%d::date", pos)
		args = append(args, *f.Date)
		pos++
	}
	if f.Direction != "" {
		query += fmt.Sprintf(" AND direction = $%d", pos)
		args = append(args, f.Direction)
		pos++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, f.Kind)
		pos++
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("find active mutations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Mutation
	for rows.Next() {
		var m entity.Mutation
		if err := scanMutation(rows, &m); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range list {
		lines, err := r.loadLines(m.ID)
		if err != nil {
			return nil, err
		}
		m.Lines = lines
	}
	return list, nil
}

// MarkReversed marca cabecera y líneas como REVERSED.
func (r *MutationRepo) MarkReversed(id string, at time.Time) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE mutations SET status = 'REVERSED', updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark mutation reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	_, err = r.q.Exec(context.Background(),
		`UPDATE mutation_lines SET status = 'REVERSED' WHERE mutation_id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark mutation lines reversed: %w", err)
	}
	return nil
}

// Delete elimina físicamente cabecera y líneas (política de retención hard-delete).
func (r *MutationRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM mutation_lines WHERE mutation_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mutation lines: %w", err)
	}
	tag, err := r.q.Exec(context.Background(),
		`DELETE FROM mutations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mutation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MutationRepo) getOne(query string, args ...any) (*entity.Mutation, error) {
	var m entity.Mutation
	err := scanMutation(r.q.QueryRow(context.Background(), query, args...), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mutation: %w", err)
	}
	lines, err := r.loadLines(m.ID)
	if err != nil {
		return nil, err
	}
	m.Lines = lines
	return &m, nil
}

func (r *MutationRepo) loadLines(mutationID string) ([]entity.MutationLine, error) {
	query := `
		SELECT ` + mutationLineColumns + `
		FROM mutation_lines WHERE mutation_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, mutationID)
	if err != nil {
		return nil, fmt.Errorf("load mutation lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.MutationLine
	for rows.Next() {
		var l entity.MutationLine
		var note *string
		if err := rows.Scan(&l.ID, &l.MutationID, &l.BatchID, &l.Quantity,
			&l.Weight, &l.Price, &note, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mutation line: %w", err)
		}
		if note != nil {
			l.Note = *note
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanMutation(row pgx.Row, m *entity.Mutation) error {
	var reason, createdBy *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.FlockID, &m.DestinationFlockID, &m.DestinationCoopID,
		&m.DestinationBatchID, &m.Date, &m.Direction, &m.Kind, &reason, &m.Method,
		&m.Status, &createdBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if reason != nil {
		m.Reason = *reason
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return nil
}
