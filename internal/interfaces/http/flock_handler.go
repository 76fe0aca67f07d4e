package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Avicola-api/internal/application/dto"
	"github.com/jhoicas/Avicola-api/internal/application/usecase"
	"github.com/jhoicas/Avicola-api/internal/domain"
)

// FlockHandler maneja las peticiones HTTP de lotes (protegido).
type FlockHandler struct {
	uc *usecase.FlockUseCase
}

// NewFlockHandler construye el handler.
func NewFlockHandler(uc *usecase.FlockUseCase) *FlockHandler {
	return &FlockHandler{uc: uc}
}

// Create godoc
// @Summary      Crear lote
// @Description  Crea el lote y siembra su primera camada con la cantidad inicial.
// @Tags         flocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFlockRequest  true  "coop_id, name, start_date, initial_quantity"
// @Success      201   {object}  dto.FlockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/flocks [post]
func (h *FlockHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateFlockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         flocks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.FlockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flocks/{id} [get]
func (h *FlockHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.GetByID(companyID, c.Params("id"))
	if err != nil {
		return mapEngineError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lotes de la granja
// @Tags         flocks
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 50)"
// @Param        offset  query  int  false  "Offset (default 0)"
// @Success      200  {object}  dto.FlockListResponse
// @Router       /api/flocks [get]
func (h *FlockHandler) List(c *fiber.Ctx) error {
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

// Close godoc
// @Summary      Cerrar lote
// @Tags         flocks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.FlockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/flocks/{id}/close [post]
func (h *FlockHandler) Close(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.Close(companyID, c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		return mapEngineError(c, err)
	}
	return c.JSON(out)
}
