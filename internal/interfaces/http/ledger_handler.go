package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/ledger"
)

// LedgerHandler maneja el registro de bajas y ventas (protegido).
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// RecordDepletion godoc
// @Summary      Registrar bajas (mortalidad/descarte)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DepletionRequest  true  "flock_id, quantity, date"
// @Success      201   {object}  dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/depletion [post]
func (h *LedgerHandler) RecordDepletion(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var body dto.DepletionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato esperado 2006-01-02"})
	}
	out, err := h.uc.RecordDepletion(c.Context(), ledger.DepletionInputDTO{
		CompanyID: companyID,
		FlockID:   body.FlockID,
		Quantity:  body.Quantity,
		Date:      date,
		Reason:    body.Reason,
	})
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordSales godoc
// @Summary      Registrar venta de aves
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SalesRequest  true  "flock_id, quantity, date, unit_price"
// @Success      201   {object}  dto.LedgerResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/sales [post]
func (h *LedgerHandler) RecordSales(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var body dto.SalesRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato esperado 2006-01-02"})
	}
	out, err := h.uc.RecordSales(c.Context(), ledger.SalesInputDTO{
		CompanyID: companyID,
		FlockID:   body.FlockID,
		Quantity:  body.Quantity,
		Date:      date,
		UnitPrice: body.UnitPrice,
		Note:      body.Note,
	})
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
