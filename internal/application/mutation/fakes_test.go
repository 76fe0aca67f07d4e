package mutation_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un memStore compartido y repos que clonan al leer y escriben
// al confirmar, emulando la semántica de filas de la base real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	flocks    map[string]*entity.Flock
	batches   map[string]*entity.Batch
	mutations map[string]*entity.Mutation
}

func newMemStore() *memStore {
	return &memStore{
		flocks:    make(map[string]*entity.Flock),
		batches:   make(map[string]*entity.Batch),
		mutations: make(map[string]*entity.Mutation),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, f := range s.flocks {
		v := *f
		c.flocks[id] = &v
	}
	for id, b := range s.batches {
		v := *b
		c.batches[id] = &v
	}
	for id, m := range s.mutations {
		c.mutations[id] = cloneMutation(m)
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.flocks = from.flocks
	s.batches = from.batches
	s.mutations = from.mutations
}

func cloneMutation(m *entity.Mutation) *entity.Mutation {
	v := *m
	v.Lines = append([]entity.MutationLine(nil), m.Lines...)
	if m.DestinationFlockID != nil {
		id := *m.DestinationFlockID
		v.DestinationFlockID = &id
	}
	if m.DestinationCoopID != nil {
		id := *m.DestinationCoopID
		v.DestinationCoopID = &id
	}
	if m.DestinationBatchID != nil {
		id := *m.DestinationBatchID
		v.DestinationBatchID = &id
	}
	return &v
}

// ── FlockRepository ───────────────────────────────────────────────────────────

type fakeFlockRepo struct{ s *memStore }

var _ repository.FlockRepository = (*fakeFlockRepo)(nil)

func (r *fakeFlockRepo) Create(f *entity.Flock) error {
	if _, ok := r.s.flocks[f.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *f
	r.s.flocks[f.ID] = &v
	return nil
}

func (r *fakeFlockRepo) GetByID(id string) (*entity.Flock, error) {
	f, ok := r.s.flocks[id]
	if !ok {
		return nil, nil
	}
	v := *f
	return &v, nil
}

func (r *fakeFlockRepo) GetForUpdate(id string) (*entity.Flock, error) {
	return r.GetByID(id)
}

func (r *fakeFlockRepo) AdjustCurrentQuantity(id string, delta int) error {
	f, ok := r.s.flocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.CurrentQuantity += delta
	return nil
}

func (r *fakeFlockRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Flock, error) {
	var list []*entity.Flock
	for _, f := range r.s.flocks {
		if f.CompanyID == companyID {
			v := *f
			list = append(list, &v)
		}
	}
	return list, nil
}

func (r *fakeFlockRepo) Update(f *entity.Flock) error {
	if _, ok := r.s.flocks[f.ID]; !ok {
		return domain.ErrNotFound
	}
	v := *f
	r.s.flocks[f.ID] = &v
	return nil
}

// ── BatchRepository ───────────────────────────────────────────────────────────

type fakeBatchRepo struct{ s *memStore }

var _ repository.BatchRepository = (*fakeBatchRepo)(nil)

func (r *fakeBatchRepo) Create(b *entity.Batch) error {
	if _, ok := r.s.batches[b.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *b
	r.s.batches[b.ID] = &v
	return nil
}

func (r *fakeBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	v := *b
	return &v, nil
}

func (r *fakeBatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *fakeBatchRepo) ListActiveByFlock(flockID string) ([]*entity.Batch, error) {
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.FlockID == flockID && b.Status == entity.BatchStatusActive {
			v := *b
			list = append(list, &v)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartDate.Equal(list[j].StartDate) {
			return list[i].StartDate.Before(list[j].StartDate)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *fakeBatchRepo) ListActiveByFlockForUpdate(flockID string) ([]*entity.Batch, error) {
	return r.ListActiveByFlock(flockID)
}

func (r *fakeBatchRepo) UpdateCounters(b *entity.Batch) error {
	stored, ok := r.s.batches[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.InitialQuantity = b.InitialQuantity
	stored.QuantityDepletion = b.QuantityDepletion
	stored.QuantitySales = b.QuantitySales
	stored.QuantityMutated = b.QuantityMutated
	stored.Status = b.Status
	stored.UpdatedAt = b.UpdatedAt
	return nil
}

func (r *fakeBatchRepo) Delete(id string) error {
	if _, ok := r.s.batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.batches, id)
	return nil
}

// ── MutationRepository ────────────────────────────────────────────────────────

type fakeMutationRepo struct{ s *memStore }

var _ repository.MutationRepository = (*fakeMutationRepo)(nil)

func (r *fakeMutationRepo) Create(m *entity.Mutation) error {
	if _, ok := r.s.mutations[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.mutations[m.ID] = cloneMutation(m)
	return nil
}

func (r *fakeMutationRepo) GetByID(id string) (*entity.Mutation, error) {
	m, ok := r.s.mutations[id]
	if !ok {
		return nil, nil
	}
	return cloneMutation(m), nil
}

func (r *fakeMutationRepo) GetForUpdate(id string) (*entity.Mutation, error) {
	return r.GetByID(id)
}

func (r *fakeMutationRepo) FindActive(f repository.MutationFilter) ([]*entity.Mutation, error) {
	var list []*entity.Mutation
	for _, m := range r.s.mutations {
		if m.Status != entity.MutationStatusActive {
			continue
		}
		if f.CompanyID != "" && m.CompanyID != f.CompanyID {
			continue
		}
		if f.FlockID != "" && m.FlockID != f.FlockID {
			continue
		}
		if f.Date != nil && !mutation.SameCalendarDay(m.Date, *f.Date) {
			continue
		}
		if f.Direction != "" && m.Direction != f.Direction {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		list = append(list, cloneMutation(m))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *fakeMutationRepo) MarkReversed(id string, at time.Time) error {
	m, ok := r.s.mutations[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = entity.MutationStatusReversed
	m.UpdatedAt = at
	for i := range m.Lines {
		m.Lines[i].Status = entity.MutationStatusReversed
	}
	return nil
}

func (r *fakeMutationRepo) Delete(id string) error {
	if _, ok := r.s.mutations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.mutations, id)
	return nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner ejecuta el callback sobre el memStore con semántica de rollback:
// ante error se restaura el snapshot previo. failuresLeft > 0 simula conflictos de
// serialización para probar el reintento.
type fakeTxRunner struct {
	s            *memStore
	failuresLeft int
	runs         int
}

var _ mutation.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	mutationRepo repository.MutationRepository,
	flockRepo repository.FlockRepository,
) error) error {
	r.runs++
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return fmt.Errorf("%w: simulado", domain.ErrTxConflict)
	}
	snapshot := r.s.clone()
	err := fn(&fakeBatchRepo{s: r.s}, &fakeMutationRepo{s: r.s}, &fakeFlockRepo{s: r.s})
	if err != nil {
		r.s.restore(snapshot)
		return err
	}
	return nil
}
