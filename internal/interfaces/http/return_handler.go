package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// ReturnHandler devoluciones contra guías de salida (protegido).
type ReturnHandler struct {
	returns *ledger.ReturnWorkflow
	log     *logger.Logger
}

// NewReturnHandler construye el handler.
func NewReturnHandler(returns *ledger.ReturnWorkflow, log *logger.Logger) *ReturnHandler {
	return &ReturnHandler{returns: returns, log: log}
}

// Candidates godoc
// @Summary      Insumos devolvibles de una guía
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de la guía de salida"
// @Success      200  {array}   dto.ReturnCandidateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/return-candidates [get]
func (h *ReturnHandler) Candidates(c *fiber.Ctx) error {
	list, err := h.returns.ListReturnCandidates(c.Context(), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toReturnCandidates(list))
}

// Proceed godoc
// @Summary      Registrar devolución
// @Description  Emite una guía de devolución consolidada (Entrada) que referencia a la guía origen.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path      string                    true  "Número de la guía de salida"
// @Param        body    body      dto.ProceedReturnRequest  true  "Insumos y cantidades a devolver"
// @Success      201     {object}  dto.CommitGuideResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/returns [post]
func (h *ReturnHandler) Proceed(c *fiber.Ctx) error {
	var in dto.ProceedReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	req := ledger.ReturnRequest{
		DeliveredBy: strings.TrimSpace(in.DeliveredBy),
		ReceivedBy:  strings.TrimSpace(in.ReceivedBy),
	}
	for _, s := range in.Selections {
		req.Selections = append(req.Selections, ledger.ReturnSelection{ItemID: s.ItemID, Quantity: s.Quantity})
	}
	res, err := h.returns.ProceedReturn(c.Context(), c.Params("number"), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().
		Str("origin", c.Params("number")).
		Strs("guides", res.GuideNumbers).
		Str("party_id", GetPartyID(c)).
		Msg("devolución registrada")
	return c.Status(fiber.StatusCreated).JSON(toCommitResponse(res))
}
