package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// SupplyHandler catálogo de insumos (protegido).
type SupplyHandler struct {
	uc  *ledger.CatalogUseCase
	log *logger.Logger
}

// NewSupplyHandler construye el handler.
func NewSupplyHandler(uc *ledger.CatalogUseCase, log *logger.Logger) *SupplyHandler {
	return &SupplyHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar insumos
// @Description  Búsqueda sin distinguir mayúsculas ni tildes por nombre, descripción, marca o código patrimonial.
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "Texto a buscar"
// @Param        category  query  string  false  "Herramienta | Material | Accesorio | Otro"
// @Param        limit     query  int     false  "Máximo por página (1-100, por defecto 20)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.SupplyListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/supplies [get]
func (h *SupplyHandler) List(c *fiber.Ctx) error {
	var in dto.SupplyListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	in.DefaultPage()
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.List(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SupplyListResponse{
		Items: toSupplyResponses(list),
		Page:  dto.NewPageResponse(in.PageRequest, len(list)),
	})
}

// Create godoc
// @Summary      Registrar insumo
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSupplyRequest  true  "Datos del insumo y cantidad inicial"
// @Success      201   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/supplies [post]
func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSupplyResponse(item))
}

// GetByID godoc
// @Summary      Obtener insumo
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del insumo"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [get]
func (h *SupplyHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSupplyResponse(item))
}

// Update godoc
// @Summary      Editar insumo
// @Description  Edición parcial de datos descriptivos. La cantidad no se edita y el estado Prestado lo manejan las guías.
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID del insumo"
// @Param        body  body      dto.UpdateSupplyRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "ITEM_IN_USE: cambio de categoría con movimientos"
// @Router       /api/supplies/{id} [put]
func (h *SupplyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSupplyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.uc.Update(c.Context(), c.Params("id"), GetPartyID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSupplyResponse(item))
}

// Delete godoc
// @Summary      Eliminar insumo
// @Description  Solo insumos sin movimientos; con historial se responde 409 y se debe dar de Baja.
// @Tags         supplies
// @Security     Bearer
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "ITEM_IN_USE"
// @Router       /api/supplies/{id} [delete]
func (h *SupplyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id"), GetPartyID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStock godoc
// @Summary      Materiales con stock bajo
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral (por defecto LOW_STOCK_THRESHOLD)"
// @Success      200  {object}  dto.LowStockResponse
// @Router       /api/supplies/low-stock [get]
func (h *SupplyHandler) LowStock(c *fiber.Ctx) error {
	list, threshold, err := h.uc.LowStock(c.Context(), c.QueryInt("threshold", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LowStockResponse{Threshold: threshold, Items: toSupplyResponses(list)})
}

// Valuation godoc
// @Summary      Valorización referencial del almacén
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/supplies/valuation [get]
func (h *SupplyHandler) Valuation(c *fiber.Ctx) error {
	v, err := h.uc.Valuation(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toValuationResponse(v))
}
