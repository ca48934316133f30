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
	"github.com/tu-usuario/farmacia-pos/internal/application/catalog"
	"github.com/tu-usuario/farmacia-pos/internal/application/checkout"
	"github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/application/sales"
	"github.com/tu-usuario/farmacia-pos/internal/infrastructure/events"
	infrapdf "github.com/tu-usuario/farmacia-pos/internal/infrastructure/pdf"
	"github.com/tu-usuario/farmacia-pos/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/farmacia-pos/internal/interfaces/http"
	"github.com/tu-usuario/farmacia-pos/pkg/config"
	"github.com/tu-usuario/farmacia-pos/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clock := inventory.SystemClock{}
	publisher := events.NewLogPublisher(log)

	// Inventario por lotes
	allocationEngine := inventory.NewAllocationEngine(txRunner, batchRepo, clock, publisher)
	priceOracle := inventory.NewPriceOracle(batchRepo, clock)
	sweeper := inventory.NewQuarantineSweeper(txRunner, clock, publisher, log)
	receiveStockUC := inventory.NewReceiveStockUseCase(txRunner, productRepo, clock)
	queriesUC := inventory.NewQueryUseCase(batchRepo, movRepo, productRepo, clock)

	// Catálogo
	productUC := catalog.NewProductUseCase(productRepo, clock)

	// Caja
	guard := checkout.NewStockGuard(productRepo, batchRepo, clock)
	settlementUC := checkout.NewSettlementUseCase(
		guard, allocationEngine, priceOracle, txRunner, clock, publisher, log,
	)

	// Ventas + recibo PDF
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)
	saleUC := sales.NewSaleUseCase(saleRepo, productRepo, batchRepo, receiptGenerator)

	// Barrido periódico de lotes vencidos
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if cfg.Sweeper.Enabled {
		go runSweeper(sweepCtx, sweeper, cfg.Sweeper.Interval, log)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmacia POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		ReceiveStock: receiveStockUC,
		Queries:      queriesUC,
		PriceOracle:  priceOracle,
		Sweeper:      sweeper,
		Guard:        guard,
		Settlement:   settlementUC,
		SaleUC:       saleUC,
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
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// runSweeper corre el barrido de cuarentena al arrancar y luego en cada tick.
func runSweeper(ctx context.Context, sweeper *inventory.QuarantineSweeper, interval time.Duration, log *logger.Logger) {
	sweep := func() {
		if _, err := sweeper.Sweep(ctx, time.Now()); err != nil {
			log.Error().Err(err).Msg("barrido de cuarentena")
		}
	}
	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
