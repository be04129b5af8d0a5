package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// errorMapping orden de evaluación: los errores más específicos primero
// (ErrHasActiveReturns y ErrItemInUse envuelven ErrConflict, ErrGuideNotFound va antes que ErrNotFound).
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrGuideNotFound, fiber.StatusNotFound, "GUIDE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrOutOfStock, fiber.StatusConflict, "OUT_OF_STOCK"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOverReturn, fiber.StatusConflict, "OVER_RETURN"},
	{domain.ErrAlreadyAnnulled, fiber.StatusConflict, "ALREADY_ANNULLED"},
	{domain.ErrNothingToReturn, fiber.StatusConflict, "NOTHING_TO_RETURN"},
	{domain.ErrHasActiveReturns, fiber.StatusConflict, "HAS_ACTIVE_RETURNS"},
	{domain.ErrItemInUse, fiber.StatusConflict, "ITEM_IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// classify traduce un error de dominio a status HTTP y código.
func classify(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Los 5xx se registran y no exponen el detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := classify(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
		msg = "error interno, intente más tarde"
	}
	out := dto.ErrorResponse{Code: code, Message: msg}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		out.Field = verr.Field
	}
	return c.Status(status).JSON(out)
}

// ErrorHandler manejador de errores de fiber: rutas inexistentes, body demasiado grande, panics recuperados.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "ROUTE_NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
