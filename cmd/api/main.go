package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Insumos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Insumos-api/internal/infrastructure/redis"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/xmldoc"
	httpRouter "github.com/jhoicas/Insumos-api/internal/interfaces/http"
	"github.com/jhoicas/Insumos-api/pkg/config"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas /api responderán 401")
	}

	ctx := context.Background()

	// ── Persistencia ──────────────────────────────────────────────────────────
	var (
		txRunner  ledger.TxRunner
		items     repository.SupplyItemRepository
		movements repository.MovementRepository
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		txRunner, items, movements = store, store.Items(), store.Movements()
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		repos := postgres.NewRepositories(pool)
		txRunner, items, movements = postgres.NewTxRunner(pool), repos.Items, repos.Movements
	}

	// ── Idempotencia del commit de guías ──────────────────────────────────────
	var idempotency ledger.IdempotencyStore
	if cfg.Idempotency.RedisURL != "" {
		client, err := infraredis.NewClient(ctx, cfg.Idempotency.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idempotency = infraredis.NewIdempotencyStore(client, cfg.Idempotency.TTL)
	} else {
		idempotency = memory.NewIdempotencyStore(cfg.Idempotency.TTL)
	}

	// ── Casos de uso ──────────────────────────────────────────────────────────
	opts := ledger.Options{
		GuidePrefix:       cfg.Ledger.GuidePrefix,
		ReturnPrefix:      cfg.Ledger.ReturnPrefix,
		LowStockThreshold: cfg.Ledger.LowStockThreshold,
	}
	movementLedger := ledger.NewMovementLedger(txRunner, items, movements, opts)
	commitUC := ledger.NewGuideCommitUseCase(txRunner, movementLedger, idempotency, opts)
	documentsUC := ledger.NewGuideDocumentUseCase(
		movementLedger,
		xmldoc.NewGuideXMLRenderer(),
		infrapdf.NewMarotoPDFGenerator(cfg.Ledger.Organization),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.Docs.Enabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.FilePath,
			Path:     cfg.Docs.Path,
			Title:    "Insumos API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:   ledger.NewCatalogUseCase(txRunner, items, opts),
		Builder:   ledger.NewGuideBuilder(items),
		Ledger:    movementLedger,
		Commit:    commitUC,
		Returns:   ledger.NewReturnWorkflow(txRunner, movements, items, commitUC, opts),
		Annulment: ledger.NewAnnulmentUseCase(movementLedger),
		Documents: documentsUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Logger:    log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
