package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional para evitar commits duplicados por reintentos del cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderVerificationCode código de verificación del XML exportado.
const HeaderVerificationCode = "X-Verification-Code"

// GuideHandler emisión, consulta, anulación, evidencia y exportación de guías (protegido).
type GuideHandler struct {
	ledger    *ledger.MovementLedger
	commit    *ledger.GuideCommitUseCase
	annulment *ledger.AnnulmentUseCase
	documents *ledger.GuideDocumentUseCase
	log       *logger.Logger
}

// NewGuideHandler construye el handler.
func NewGuideHandler(
	l *ledger.MovementLedger,
	commit *ledger.GuideCommitUseCase,
	annulment *ledger.AnnulmentUseCase,
	documents *ledger.GuideDocumentUseCase,
	log *logger.Logger,
) *GuideHandler {
	return &GuideHandler{ledger: l, commit: commit, annulment: annulment, documents: documents, log: log}
}

// Commit godoc
// @Summary      Emitir guía
// @Description  Confirma el carrito. CONSOLIDADO emite un número para todas las líneas;
//
//	INDIVIDUAL emite "<base>-<i>" por línea. El responsable es el del token.
//
// @Tags         guides
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                  false  "Clave para reintentos seguros"
// @Param        body             body      dto.CommitGuideRequest  true   "Líneas, modo y datos de cabecera"
// @Success      201  {object}  dto.CommitGuideResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/guides [post]
func (h *GuideHandler) Commit(c *fiber.Ctx) error {
	partyID := GetPartyID(c)
	if partyID == "" {
		return writeError(c, h.log, domain.ErrUnauthorized)
	}
	var in dto.CommitGuideRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	deliverer := strings.TrimSpace(in.DelivererName)
	if deliverer == "" {
		deliverer = GetPartyName(c)
	}
	res, err := h.commit.Commit(c.Context(), toCart(in.Lines), in.Mode, ledger.GuideMeta{
		Direction:      in.Direction,
		ResponsibleID:  partyID,
		DestinationID:  strings.TrimSpace(in.DestinationID),
		ReceiverName:   strings.TrimSpace(in.ReceiverName),
		DelivererName:  deliverer,
		Observation:    strings.TrimSpace(in.Observation),
		// c.Get apunta al buffer de fasthttp, que se reutiliza entre peticiones.
		IdempotencyKey: strings.Clone(c.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().
		Strs("guides", res.GuideNumbers).
		Int("movements", len(res.Movements)).
		Str("party_id", partyID).
		Msg("guía emitida")
	return c.Status(fiber.StatusCreated).JSON(toCommitResponse(res))
}

// History godoc
// @Summary      Historial de guías
// @Description  Movimientos agrupados por guía, de la más reciente a la más antigua.
// @Tags         guides
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Insumo, guía, DNI, destino o nombres"
// @Param        direction  query  string  false  "Salida | Entrada"
// @Param        status     query  string  false  "Activo | Anulado"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta, inclusive (YYYY-MM-DD)"
// @Param        limit      query  int     false  "Guías por página"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.GuideHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/guides [get]
func (h *GuideHandler) History(c *fiber.Ctx) error {
	var in dto.GuideHistoryRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	in.DefaultPage()
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	views, err := h.ledger.History(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.GuideHistoryResponse{
		Items: make([]dto.GuideResponse, 0, len(views)),
		Page:  dto.NewPageResponse(in.PageRequest, len(views)),
	}
	for _, v := range views {
		out.Items = append(out.Items, toGuideResponse(v))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de guía
// @Tags         guides
// @Security     Bearer
// @Produce      json
// @Param        number  path      string  true  "Número de guía"
// @Success      200     {object}  dto.GuideResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/guides/{number} [get]
func (h *GuideHandler) Get(c *fiber.Ctx) error {
	view, err := h.ledger.Guide(c.Context(), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toGuideResponse(view))
}

// Annul godoc
// @Summary      Anular guía
// @Description  Revierte el efecto de la guía en el stock y marca sus movimientos como Anulado.
// @Tags         guides
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path      string                 true   "Número de guía"
// @Param        body    body      dto.AnnulGuideRequest  false  "Motivo"
// @Success      200     {object}  dto.AnnulGuideResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/annul [post]
func (h *GuideHandler) Annul(c *fiber.Ctx) error {
	var in dto.AnnulGuideRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	number := c.Params("number")
	movs, err := h.annulment.Annul(c.Context(), number, GetPartyID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	guide := ""
	if len(movs) > 0 {
		guide = movs[0].GuideNumber
	}
	h.log.Info().Str("guide", guide).Str("party_id", GetPartyID(c)).Msg("guía anulada")
	return c.JSON(dto.AnnulGuideResponse{GuideNumber: guide, Movements: toMovementResponses(movs)})
}

// AttachEvidence godoc
// @Summary      Adjuntar evidencia a la guía
// @Tags         guides
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path      string                     true  "Número de guía"
// @Param        body    body      dto.AttachEvidenceRequest  true  "URL de la evidencia"
// @Success      200     {object}  dto.AttachEvidenceResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/evidence [put]
func (h *GuideHandler) AttachEvidence(c *fiber.Ctx) error {
	var in dto.AttachEvidenceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	number := c.Params("number")
	n, err := h.ledger.AttachEvidence(c.Context(), number, in.URL, GetPartyID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AttachEvidenceResponse{GuideNumber: strings.ToUpper(strings.TrimSpace(number)), Updated: n})
}

// PDF godoc
// @Summary      Acta en PDF (reimpresión)
// @Tags         guides
// @Security     Bearer
// @Produce      application/pdf
// @Param        number  path  string  true  "Número de guía"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/pdf [get]
func (h *GuideHandler) PDF(c *fiber.Ctx) error {
	out, filename, err := h.documents.PDF(c.Context(), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(out)
}

// XML godoc
// @Summary      Guía en XML con código de verificación
// @Tags         guides
// @Security     Bearer
// @Produce      application/xml
// @Param        number  path  string  true  "Número de guía"
// @Success      200
// @Header       200  {string}  X-Verification-Code  "SHA-256 del XML canónico"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/guides/{number}/xml [get]
func (h *GuideHandler) XML(c *fiber.Ctx) error {
	out, digest, filename, err := h.documents.XML(c.Context(), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(HeaderVerificationCode, digest)
	return c.Send(out)
}
