package mutation

import (
	"time"

	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/repository"
)

// GuardResult es la decisión del guard de duplicados: mutaciones existentes que
// coinciden exactamente (ruta de edición) y violaciones de políticas de restricción.
type GuardResult struct {
	ExistingMutationIDs []string
	Violations          []*domain.RestrictionViolationError
}

// DuplicateGuard detecta mutaciones existentes para la tupla
// (lote origen, día, dirección, tipo) y decide crear-vs-editar; además aplica las
// políticas configurables de restricción de ingreso.
type DuplicateGuard struct {
	cfg EngineConfig
}

// NewDuplicateGuard construye el guard con la configuración de políticas.
func NewDuplicateGuard(cfg EngineConfig) *DuplicateGuard {
	return &DuplicateGuard{cfg: cfg}
}

// Resolve busca mutaciones ACTIVE con coincidencia exacta de los cuatro campos
// (la fecha se compara por día calendario) y evalúa las restricciones. editingID no
// vacío indica que el caller ya está editando esa mutación: las restricciones no
// aplican a ediciones, solo a ingresos nuevos.
func (g *DuplicateGuard) Resolve(
	mutationRepo repository.MutationRepository,
	companyID, flockID string,
	date time.Time,
	direction, kind string,
	editingID string,
) (GuardResult, error) {
	var result GuardResult

	exact, err := mutationRepo.FindActive(repository.MutationFilter{
		CompanyID: companyID,
		FlockID:   flockID,
		Date:      &date,
		Direction: direction,
		Kind:      kind,
	})
	if err != nil {
		return result, err
	}
	for _, m := range exact {
		result.ExistingMutationIDs = append(result.ExistingMutationIDs, m.ID)
	}

	// Editar (explícito o por coincidencia exacta) nunca dispara restricciones:
	// la edición reemplaza el registro en conflicto, no lo duplica.
	if editingID != "" || len(result.ExistingMutationIDs) > 0 {
		return result, nil
	}

	if !g.cfg.AllowSameDayRepeatedInput {
		if v, err := g.firstConflict(mutationRepo, repository.MutationFilter{
			CompanyID: companyID, Date: &date,
		}, PolicySameDayRepeatedInput); err != nil {
			return result, err
		} else if v != nil {
			result.Violations = append(result.Violations, v)
		}
	}
	if !g.cfg.AllowSameLivestockRepeatedInput {
		if v, err := g.firstConflict(mutationRepo, repository.MutationFilter{
			CompanyID: companyID, FlockID: flockID,
		}, PolicySameLivestockRepeatedInput); err != nil {
			return result, err
		} else if v != nil {
			result.Violations = append(result.Violations, v)
		}
	}
	if !g.cfg.AllowSameLivestockSameDay {
		if v, err := g.firstConflict(mutationRepo, repository.MutationFilter{
			CompanyID: companyID, FlockID: flockID, Date: &date,
		}, PolicySameLivestockSameDay); err != nil {
			return result, err
		} else if v != nil {
			result.Violations = append(result.Violations, v)
		}
	}

	return result, nil
}

// firstConflict devuelve la violación con la primera mutación ACTIVE que cumpla el
// filtro, o nil si no hay conflicto.
func (g *DuplicateGuard) firstConflict(
	mutationRepo repository.MutationRepository,
	f repository.MutationFilter,
	policy string,
) (*domain.RestrictionViolationError, error) {
	matches, err := mutationRepo.FindActive(f)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &domain.RestrictionViolationError{
		Policy:             policy,
		ConflictMutationID: matches[0].ID,
	}, nil
}

// SameCalendarDay compara dos fechas por día calendario (ignora hora y zona relativa).
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
