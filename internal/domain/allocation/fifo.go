package allocation

import (
	"sort"
	"time"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
)

// PlanLine es una asignación parcial sobre una camada.
type PlanLine struct {
	BatchID         string
	StartDate       time.Time
	Quantity        int
	AvailableBefore int
}

// Plan es el resultado de la asignación FIFO. No tiene efectos: el caller debe
// verificar CanFulfill antes de aplicarlo; si no alcanza, Shortfall indica el faltante.
type Plan struct {
	Lines     []PlanLine
	Requested int
	Allocated int
	Shortfall int
}

// CanFulfill indica si el plan cubre la cantidad solicitada completa.
func (p Plan) CanFulfill() bool { return p.Shortfall == 0 }

// BatchesUsed devuelve cuántas camadas toca el plan.
func (p Plan) BatchesUsed() int { return len(p.Lines) }

// BuildPlan computa la asignación FIFO: camadas ACTIVE con disponible > 0 y fecha de
// ingreso <= asOf, ordenadas por fecha ascendente (desempate por ID para determinismo),
// consumidas con min(disponible, restante). maxAgeDays > 0 excluye camadas más viejas
// que ese límite. Es de solo lectura; el snapshot debe ser consistente con la escritura
// posterior (misma transacción).
func BuildPlan(batches []*entity.Batch, requested int, asOf time.Time, maxAgeDays int) (Plan, error) {
	plan := Plan{Requested: requested}
	if requested <= 0 {
		return plan, domain.ErrInvalidInput
	}

	eligible := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if err := b.CheckConsistency(); err != nil {
			return plan, err
		}
		if b.Status != entity.BatchStatusActive || b.Available() <= 0 {
			continue
		}
		if b.StartDate.After(asOf) {
			continue
		}
		if maxAgeDays > 0 && b.AgeDays(asOf) > maxAgeDays {
			continue
		}
		eligible = append(eligible, b)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].StartDate.Equal(eligible[j].StartDate) {
			return eligible[i].StartDate.Before(eligible[j].StartDate)
		}
		return eligible[i].ID < eligible[j].ID
	})

	remaining := requested
	for _, b := range eligible {
		if remaining == 0 {
			break
		}
		take := b.Available()
		if take > remaining {
			take = remaining
		}
		plan.Lines = append(plan.Lines, PlanLine{
			BatchID:         b.ID,
			StartDate:       b.StartDate,
			Quantity:        take,
			AvailableBefore: b.Available(),
		})
		remaining -= take
	}

	plan.Allocated = requested - remaining
	plan.Shortfall = remaining
	return plan, nil
}
