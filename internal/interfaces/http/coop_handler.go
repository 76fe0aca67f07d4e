package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/usecase"
)

// CoopHandler maneja las peticiones HTTP de galpones (protegido).
type CoopHandler struct {
	uc *usecase.CoopUseCase
}

// NewCoopHandler construye el handler.
func NewCoopHandler(uc *usecase.CoopUseCase) *CoopHandler {
	return &CoopHandler{uc: uc}
}

// Create godoc
// @Summary      Crear galpón
// @Tags         coops
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCoopRequest  true  "name, location, capacity"
// @Success      201   {object}  dto.CoopResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/coops [post]
func (h *CoopHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateCoopRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	out, err := h.uc.Create(companyID, in)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener galpón por ID
// @Tags         coops
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del galpón"
// @Success      200  {object}  dto.CoopResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/coops/{id} [get]
func (h *CoopHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return mapEngineError(c, err)
	}
	if out == nil || out.CompanyID != companyID {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "galpón no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar galpones de la granja
// @Tags         coops
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 50)"
// @Param        offset  query  int  false  "Offset (default 0)"
// @Success      200  {object}  dto.CoopListResponse
// @Router       /api/coops [get]
func (h *CoopHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	out, err := h.uc.List(companyID, limit, offset)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(out)
}
