package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/domain"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
)

// MutationHandler maneja las peticiones HTTP del motor de mutaciones (protegido).
type MutationHandler struct {
	uc *mutation.UseCase
}

// NewMutationHandler construye el handler.
func NewMutationHandler(uc *mutation.UseCase) *MutationHandler {
	return &MutationHandler{uc: uc}
}

// Preview godoc
// @Summary      Preview del plan FIFO (sin efectos)
// @Tags         mutations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MutationRequest  true  "flock_id, quantity, date"
// @Success      200   {object}  dto.AllocationPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/mutations/preview [post]
func (h *MutationHandler) Preview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	in, err := h.parseInput(c, companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.PreviewFifo(c.Context(), in)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(out)
}

// ProcessFifo godoc
// @Summary      Procesar mutación FIFO
// @Description  Aplica la mutación consumiendo camadas en orden FIFO. Si ya existe una
//
//	mutación ACTIVE con la misma tupla (lote, día, dirección, tipo), se edita:
//	se revierte la existente y se aplica la nueva en la misma transacción.
//
// @Tags         mutations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MutationRequest  true  "flock_id, quantity, date, direction, kind"
// @Success      201   {object}  dto.MutationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/mutations [post]
func (h *MutationHandler) ProcessFifo(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	in, err := h.parseInput(c, companyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ProcessFifo(c.Context(), in)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ProcessManual godoc
// @Summary      Procesar mutación manual
// @Description  Igual que la FIFO pero con camadas y cantidades elegidas por el usuario.
// @Tags         mutations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManualMutationRequest  true  "flock_id, date, direction, kind, lines"
// @Success      201   {object}  dto.MutationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/mutations/manual [post]
func (h *MutationHandler) ProcessManual(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var body dto.ManualMutationRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in, err := toInputDTO(body.MutationRequest, companyID, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato esperado 2006-01-02"})
	}
	for _, l := range body.Lines {
		in.Lines = append(in.Lines, mutation.ManualLineInput{
			BatchID:  l.BatchID,
			Quantity: l.Quantity,
			Weight:   l.Weight,
			Price:    l.Price,
			Note:     l.Note,
		})
	}
	out, err := h.uc.ProcessManual(c.Context(), in)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar (revertir) una mutación
// @Description  Revierte los efectos sobre camadas y lotes. Según la política de
//
//	retención, el registro desaparece o queda marcado REVERSED.
//
// @Tags         mutations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mutación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/mutations/{id} [delete]
func (h *MutationHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Delete(c.Context(), companyID, c.Params("id")); err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(fiber.Map{"message": "mutación revertida"})
}

// GetByID godoc
// @Summary      Consultar una mutación con sus líneas
// @Tags         mutations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mutación"
// @Success      200  {object}  dto.MutationDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/mutations/{id} [get]
func (h *MutationHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	m, err := h.uc.GetByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(toDetailResponse(m))
}

func toDetailResponse(m *entity.Mutation) dto.MutationDetailResponse {
	lines := make([]dto.MutationLineDTO, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, dto.MutationLineDTO{
			BatchID:  l.BatchID,
			Quantity: l.Quantity,
			Weight:   l.Weight,
			Price:    l.Price,
			Note:     l.Note,
			Status:   l.Status,
		})
	}
	return dto.MutationDetailResponse{
		ID:                 m.ID,
		FlockID:            m.FlockID,
		DestinationFlockID: m.DestinationFlockID,
		DestinationCoopID:  m.DestinationCoopID,
		Date:               m.Date,
		Direction:          m.Direction,
		Kind:               m.Kind,
		Reason:             m.Reason,
		Method:             m.Method,
		Status:             m.Status,
		TotalQuantity:      m.TotalQuantity(),
		Lines:              lines,
		CreatedAt:          m.CreatedAt,
	}
}

// AvailableBatches godoc
// @Summary      Camadas con disponibilidad de un lote
// @Tags         mutations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {array}   dto.AvailableBatchDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flocks/{id}/batches/available [get]
func (h *MutationHandler) AvailableBatches(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.uc.AvailableBatches(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(list)
}

func (h *MutationHandler) parseInput(c *fiber.Ctx, companyID string) (mutation.MutationInputDTO, error) {
	var body dto.MutationRequest
	if err := c.BodyParser(&body); err != nil {
		return mutation.MutationInputDTO{}, err
	}
	return toInputDTO(body, companyID, GetUserID(c))
}

func toInputDTO(body dto.MutationRequest, companyID, userID string) (mutation.MutationInputDTO, error) {
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return mutation.MutationInputDTO{}, err
	}
	return mutation.MutationInputDTO{
		CompanyID:          companyID,
		UserID:             userID,
		FlockID:            body.FlockID,
		Quantity:           body.Quantity,
		Date:               date,
		Direction:          body.Direction,
		Kind:               body.Kind,
		Reason:             body.Reason,
		DestinationFlockID: body.DestinationFlockID,
		DestinationCoopID:  body.DestinationCoopID,
		EditMutationID:     body.EditMutationID,
		Weight:             body.Weight,
		Price:              body.Price,
		Note:               body.Note,
	}, nil
}

// mapEngineError traduce los errores del motor a códigos HTTP. La corrupción del libro
// se responde 500 con su detalle: es un bug del servidor, nunca culpa del cliente.
func mapEngineError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientQuantityError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_QUANTITY",
			Message: insufficient.Error(),
		})
	}
	var restriction *domain.RestrictionViolationError
	if errors.As(err, &restriction) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "RESTRICTION_VIOLATION",
			Message: restriction.Error(),
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrLedgerCorruption):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "LEDGER_CORRUPTION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
