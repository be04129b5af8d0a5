package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog   *ledger.CatalogUseCase
	Builder   *ledger.GuideBuilder
	Ledger    *ledger.MovementLedger
	Commit    *ledger.GuideCommitUseCase
	Returns   *ledger.ReturnWorkflow
	Annulment *ledger.AnnulmentUseCase
	Documents *ledger.GuideDocumentUseCase
	JWTSecret string
	JWTIssuer string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	httpLog := log.Component("http")

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Catálogo
	supplies := api.Group("/supplies")
	supplyHandler := NewSupplyHandler(deps.Catalog, httpLog)
	supplies.Get("/", supplyHandler.List)
	supplies.Post("/", supplyHandler.Create)
	supplies.Get("/low-stock", supplyHandler.LowStock)
	supplies.Get("/valuation", supplyHandler.Valuation)
	supplies.Get("/:id", supplyHandler.GetByID)
	supplies.Put("/:id", supplyHandler.Update)
	supplies.Delete("/:id", supplyHandler.Delete)

	// Carrito (estado del cliente)
	cart := api.Group("/cart")
	cartHandler := NewCartHandler(deps.Builder, httpLog)
	cart.Post("/add", cartHandler.Add)
	cart.Post("/set-quantity", cartHandler.SetQuantity)
	cart.Post("/remove", cartHandler.Remove)

	// Guías
	guides := api.Group("/guides")
	guideHandler := NewGuideHandler(deps.Ledger, deps.Commit, deps.Annulment, deps.Documents, httpLog)
	guides.Post("/", guideHandler.Commit)
	guides.Get("/", guideHandler.History)
	guides.Get("/:number", guideHandler.Get)
	guides.Post("/:number/annul", guideHandler.Annul)
	guides.Put("/:number/evidence", guideHandler.AttachEvidence)
	guides.Get("/:number/pdf", guideHandler.PDF)
	guides.Get("/:number/xml", guideHandler.XML)

	// Devoluciones
	returnHandler := NewReturnHandler(deps.Returns, httpLog)
	guides.Get("/:number/return-candidates", returnHandler.Candidates)
	guides.Post("/:number/returns", returnHandler.Proceed)
}
