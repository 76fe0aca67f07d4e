package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrInsufficientQuantity: la cantidad solicitada excede lo disponible en las camadas.
	ErrInsufficientQuantity = errors.New("cantidad insuficiente")
	// ErrRestrictionViolation: una política de restricción de ingreso bloqueó la mutación.
	ErrRestrictionViolation = errors.New("restricción de ingreso violada")
	// ErrLedgerCorruption: un invariante del libro de camadas quedó violado
	// (disponible negativo, línea huérfana). Aborta la transacción; nunca se corrige en silencio.
	ErrLedgerCorruption = errors.New("corrupción del libro de camadas")
	// ErrTxConflict: la transacción falló por serialización o deadlock; se reintenta una sola vez.
	ErrTxConflict = errors.New("conflicto de transacción")
)

// InsufficientQuantityError detalla un faltante de disponibilidad.
// BatchID queda vacío cuando el faltante es del lote completo (suma de todas las camadas).
type InsufficientQuantityError struct {
	BatchID   string
	Requested int
	Available int
	Shortfall int
}

func (e *InsufficientQuantityError) Error() string {
	if e.BatchID != "" {
		return fmt.Sprintf("cantidad insuficiente en camada %s: solicitado %d, disponible %d", e.BatchID, e.Requested, e.Available)
	}
	return fmt.Sprintf("cantidad insuficiente: solicitado %d, disponible %d (faltante %d)", e.Requested, e.Available, e.Shortfall)
}

func (e *InsufficientQuantityError) Unwrap() error { return ErrInsufficientQuantity }

// RestrictionViolationError identifica la política que bloqueó el ingreso y la mutación
// en conflicto, para que la UI pueda ofrecer "editar la existente".
type RestrictionViolationError struct {
	Policy             string
	ConflictMutationID string
}

func (e *RestrictionViolationError) Error() string {
	return fmt.Sprintf("política %s: ya existe la mutación %s", e.Policy, e.ConflictMutationID)
}

func (e *RestrictionViolationError) Unwrap() error { return ErrRestrictionViolation }

// LedgerCorruptionError detalla el invariante violado. Se propaga al caller y dispara el
// camino de alertas; jamás se auto-corrige porque ocultaría un bug aguas arriba.
type LedgerCorruptionError struct {
	BatchID string
	Detail  string
}

func (e *LedgerCorruptionError) Error() string {
	return fmt.Sprintf("libro de camadas corrupto (camada %s): %s", e.BatchID, e.Detail)
}

func (e *LedgerCorruptionError) Unwrap() error { return ErrLedgerCorruption }
