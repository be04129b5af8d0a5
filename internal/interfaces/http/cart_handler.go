package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// CartHandler arma el carrito de la guía. El carrito vive en el cliente: cada petición
// envía las líneas actuales y recibe el carrito resultante.
type CartHandler struct {
	builder *ledger.GuideBuilder
	log     *logger.Logger
}

// NewCartHandler construye el handler.
func NewCartHandler(builder *ledger.GuideBuilder, log *logger.Logger) *CartHandler {
	return &CartHandler{builder: builder, log: log}
}

// Add godoc
// @Summary      Agregar insumo al carrito
// @Description  quantity 0 equivale a 1. Si el insumo ya está en el carrito la línea no cambia.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CartAddRequest  true  "Carrito actual e insumo a agregar"
// @Success      200   {object}  dto.CartResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/add [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in dto.CartAddRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	return h.apply(c, in.Lines, func(ctx context.Context, cart *entity.Cart) error {
		_, err := h.builder.Add(ctx, cart, in.ItemID, in.Quantity)
		return err
	})
}

// SetQuantity godoc
// @Summary      Cambiar cantidad de una línea del carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CartSetQuantityRequest  true  "Carrito actual, insumo y nueva cantidad"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cart/set-quantity [post]
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.CartSetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	return h.apply(c, in.Lines, func(ctx context.Context, cart *entity.Cart) error {
		_, err := h.builder.SetQuantity(ctx, cart, in.ItemID, in.Quantity)
		return err
	})
}

// Remove godoc
// @Summary      Quitar insumo del carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CartRemoveRequest  true  "Carrito actual e insumo a quitar"
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart/remove [post]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	var in dto.CartRemoveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	return h.apply(c, in.Lines, func(_ context.Context, cart *entity.Cart) error {
		h.builder.Remove(cart, in.ItemID)
		return nil
	})
}

func (h *CartHandler) apply(c *fiber.Ctx, lines []dto.CartLineDTO, op func(context.Context, *entity.Cart) error) error {
	cart := toCart(lines)
	if err := op(c.Context(), &cart); err != nil {
		return writeError(c, h.log, err)
	}
	view, err := h.builder.View(c.Context(), &cart)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toCartResponse(view))
}
