package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	StockDiscount    *inventory.StockDiscountUseCase
	Ledger           *inventory.LedgerUseCase
	Sales            *sale.CreateSaleUseCase
	JWTSecret        string
	Log              *logger.Logger
}

// AppConfig opciones del servidor fiber.
type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SwaggerFile  string              // vacío o inexistente = sin /docs
	Gatherer     prometheus.Gatherer // nil = sin /metrics
}

// NewApp crea la aplicación fiber con log de requests, recover, /health, /metrics, /docs y las rutas de la API.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(RequestLogger(deps.Log.Component("http")))
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    "PUI POS Stock API",
			}))
		} else {
			deps.Log.Warn().Str("file", cfg.SwaggerFile).Msg("swagger no disponible")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockDiscount, deps.Ledger, deps.Log)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/:id", inventoryHandler.GetMovement)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Post("/movements/lookup", inventoryHandler.LookupMovements)
	inv.Post("/stock/discount", inventoryHandler.DiscountStock)
	inv.Post("/stock/check", inventoryHandler.CheckStock)
	inv.Post("/stock/discount-bulk", inventoryHandler.DiscountBulk)
	inv.Get("/products/:id/ledger/verify", inventoryHandler.VerifyLedger)

	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Sales, deps.Log)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
}
