package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/softec-apps/PUI-POS-sub002/docs"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/einvoice"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/memory"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/messaging/kafka"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/notifier"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/postgres"
	httpRouter "github.com/softec-apps/PUI-POS-sub002/internal/interfaces/http"
	"github.com/softec-apps/PUI-POS-sub002/internal/metrics"
	"github.com/softec-apps/PUI-POS-sub002/pkg/config"
	"github.com/softec-apps/PUI-POS-sub002/pkg/jwt"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// @title        PUI POS Stock API
// @version      1.0
// @description  Ledger de stock, descuentos transaccionales y ventas POS.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
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
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
		log.Warn().Msg("JWT_SECRET vacío: usando secreto de desarrollo")
	}

	ctx := context.Background()
	repos, closeStorage := openStorage(ctx, cfg, log)
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stockMetrics := metrics.NewStockMetricsWithRegisterer(reg)

	invoiceNotifier, closers := buildNotifier(cfg, log)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar notificador")
			}
		}
	}()

	registerMovementUC := inventory.NewRegisterMovementUseCase(repos.txRunner, repos.users, log, stockMetrics)
	stockDiscountUC := inventory.NewStockDiscountUseCase(repos.txRunner, repos.products, repos.users, log, stockMetrics)
	ledgerUC := inventory.NewLedgerUseCase(repos.movements, repos.products, log)
	createSaleUC := sale.NewCreateSaleUseCase(
		repos.saleTxRunner, repos.sales, repos.users, stockDiscountUC, invoiceNotifier, log, stockMetrics,
	).WithNotifyTimeout(cfg.EInvoice.Timeout)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:         cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		SwaggerFile:  cfg.HTTP.SwaggerFile,
		Gatherer:     reg,
	}, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		StockDiscount:    stockDiscountUC,
		Ledger:           ledgerUC,
		Sales:            createSaleUC,
		JWTSecret:        cfg.JWT.Secret,
		Log:              log,
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

type storage struct {
	txRunner     inventory.TxRunner
	saleTxRunner sale.TxRunner
	products     repository.ProductRepository
	movements    repository.StockMovementRepository
	sales        repository.SaleRepository
	users        repository.UserRepository
}

// openStorage elige el adaptador según STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage, func()) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		memory.SeedDemo(store, 5)
		runner := memory.NewTxRunner(store, cfg.DB.TxTimeout)
		if cfg.App.Env == "development" {
			if tok, err := jwt.Generate(cfg.JWT.Secret, memory.DemoUserID, cfg.JWT.Issuer, 12*60); err == nil {
				log.Info().Str("user_id", memory.DemoUserID).Str("token", tok).Msg("almacenamiento en memoria con datos demo")
			}
		}
		return storage{
			txRunner:     runner,
			saleTxRunner: runner,
			products:     memory.NewProductRepository(store),
			movements:    memory.NewStockMovementRepository(store),
			sales:        memory.NewSaleRepository(store),
			users:        memory.NewUserRepository(store),
		}, func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")
	}
	runner := postgres.NewTxRunner(pool, cfg.DB.TxTimeout)
	return storage{
		txRunner:     runner,
		saleTxRunner: runner,
		products:     postgres.NewProductRepository(pool),
		movements:    postgres.NewStockMovementRepository(pool),
		sales:        postgres.NewSaleRepository(pool),
		users:        postgres.NewUserRepository(pool),
	}, pool.Close
}

// buildNotifier arma el dispatcher con los destinos configurados (Kafka, facturación).
// Sin destinos devuelve notifier.Nop.
func buildNotifier(cfg *config.Config, log *logger.Logger) (sale.InvoiceNotifier, []io.Closer) {
	var (
		sinks   []notifier.Sink
		closers []io.Closer
	)
	if cfg.Kafka.Enabled() {
		pub, err := kafka.NewSalePublisher(cfg.Kafka.Brokers, cfg.Kafka.SalesTopic, log)
		if err != nil {
			log.Error().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka deshabilitado")
		} else {
			sinks = append(sinks, notifier.Sink{Name: "kafka", Notifier: pub})
			closers = append(closers, pub)
		}
	}
	if cfg.EInvoice.WebhookURL != "" {
		sinks = append(sinks, notifier.Sink{
			Name:     "einvoice",
			Notifier: einvoice.NewWebhookClient(cfg.EInvoice.WebhookURL, cfg.EInvoice.Token, cfg.EInvoice.Timeout, log),
		})
	}
	if len(sinks) == 0 {
		return notifier.Nop{}, nil
	}
	log.Info().Int("sinks", len(sinks)).Msg("notificación de ventas habilitada")
	return notifier.NewDispatcher(sinks...), closers
}
