package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/expiry"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lots"
	"github.com/jhoicas/Trazabilidad-api/internal/application/products"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/lock"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/rules"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
	"github.com/jhoicas/Trazabilidad-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		reads repository.Registry
		tx    repository.TxRunner
		locks lock.Manager
	)
	switch cfg.App.Storage {
	case "memory":
		// Backend en memoria para desarrollo y demos sin DB.
		store := memory.NewStore()
		reads = store.Registry()
		tx = store
		locks = memory.NewLockManager()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(cfg.DB); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		reads = postgres.NewRegistry(pool)
		tx = postgres.NewTxRunner(pool)
		locks = postgres.NewAdvisoryLockManager(pool)
	}

	engineRules := rulesFromConfig(cfg.Engine)
	m := metrics.New()

	coord := coordinator.New(coordinator.Deps{
		Reads:   reads,
		Tx:      tx,
		Locks:   locks,
		Rules:   engineRules,
		Log:     log,
		Metrics: m,
	})
	lotRegistry := lots.New(tx, locks, reads.Organizations, reads.Products, engineRules, log, nil)
	productUC := products.New(reads.Organizations, reads.Products, nil)
	inventoryLedger := ledger.New(reads.Codes)

	// Escaneo diario de lotes próximos a vencer.
	scanner := expiry.New(reads.Lots, engineRules, log, nil)
	scheduler := cron.New()
	if err := scanner.Schedule(scheduler, cfg.Engine.ExpiryCronSpec); err != nil {
		log.Fatal().Err(err).Msg("programar escaneo de vencimientos")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Lots:        lotRegistry,
		Products:    productUC,
		Coordinator: coord,
		Ledger:      inventoryLedger,
		History:     reads.History,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}

// rulesFromConfig parte de las reglas por defecto y aplica los overrides de despliegue.
func rulesFromConfig(e config.EngineConfig) rules.Rules {
	r := rules.Default()
	r.RecallWindow = e.RecallWindow()
	r.MaxShipmentQuantity = e.MaxShipmentQuantity
	r.MaxTreatmentQuantity = e.MaxTreatmentQuantity
	r.MaxLotQuantity = e.MaxLotQuantity
	r.MinExpiryDays = e.MinExpiryDays
	r.ExpiryWarning = e.ExpiryWarningDays
	r.DefaultLotPrefix = e.DefaultLotPrefix
	r.Locks.Shipment = time.Duration(e.LockShipmentMS) * time.Millisecond
	r.Locks.LotProduction = time.Duration(e.LockLotProductionMS) * time.Millisecond
	r.Locks.Quick = time.Duration(e.LockQuickMS) * time.Millisecond
	r.Locks.Default = time.Duration(e.LockDefaultMS) * time.Millisecond
	r.Locks.MaxAttempts = e.LockMaxAttempts
	r.Locks.RetryDelay = time.Duration(e.LockRetryDelayMS) * time.Millisecond
	return r
}
