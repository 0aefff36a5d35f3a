package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/application/catalog"
	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/folio"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/application/issuer"
	"github.com/AstralMoonlight/torn/internal/application/payment"
	"github.com/AstralMoonlight/torn/internal/application/sales"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/AstralMoonlight/torn/internal/infrastructure/dte"
	"github.com/AstralMoonlight/torn/internal/infrastructure/memory"
	"github.com/AstralMoonlight/torn/internal/infrastructure/postgres"
	"github.com/AstralMoonlight/torn/internal/infrastructure/redislock"
	"github.com/AstralMoonlight/torn/internal/infrastructure/tracing"
	httpRouter "github.com/AstralMoonlight/torn/internal/interfaces/http"
	"github.com/AstralMoonlight/torn/pkg/config"
	"github.com/AstralMoonlight/torn/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing := tracing.Install(tracing.NewProvider(log.Component("tracing")))
	defer func() { _ = shutdownTracing(context.Background()) }()

	var (
		txRunner repository.TxRunner
		health   httpRouter.HealthChecker
	)
	switch cfg.Storage {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner = postgres.NewTxRunner(pool, cfg.DB.TxTimeout)
		health = pool
	}

	// Candado distribuido de caja: solo si hay Redis; el candado de base de datos siempre aplica.
	var locker cash.CashierLocker
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		locker = redislock.New(rdb, cfg.Redis.LockTTL)
	}

	issuerUC := issuer.NewProfileUseCase(txRunner, log.Component("issuer"))
	if cfg.Issuer.Configured() {
		if _, err := issuerUC.Configure(ctx, dto.IssuerRequest{
			TaxID:        cfg.Issuer.TaxID,
			LegalName:    cfg.Issuer.LegalName,
			BusinessLine: cfg.Issuer.BusinessLine,
			ActivityCode: cfg.Issuer.ActivityCode,
			Address:      cfg.Issuer.Address,
			Commune:      cfg.Issuer.Commune,
			City:         cfg.Issuer.City,
		}); err != nil {
			log.Fatal().Err(err).Msg("emisor desde configuración")
		}
	}

	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		log.Warn().Err(err).Msg("zona horaria America/Santiago no disponible, se usa UTC")
		loc = time.UTC
	}

	ledger := inventory.NewLedger(log.Component("inventory"))
	cashManager := cash.NewManager(txRunner, locker, log.Component("cash"))
	saleUC := sales.NewSaleUseCase(
		txRunner,
		folio.NewAllocator(log.Component("folio")),
		ledger,
		payment.NewReconciler(log.Component("payment")),
		cashManager,
		dte.NewIssuer(loc),
		sales.Config{
			TaxRate:                   cfg.Sales.TaxRate,
			RoundingScale:             cfg.Sales.RoundingScale,
			SaleProvisionalFallback:   cfg.Sales.SaleProvisionalFallback,
			ReturnProvisionalFallback: cfg.Sales.ReturnProvisionalFallback,
		},
		log.Component("sales"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sales:     saleUC,
		Cash:      cashManager,
		Folios:    folio.NewRangeUseCase(txRunner, log.Component("folio")),
		Inventory: inventory.NewRegisterMovementUseCase(txRunner, ledger, log.Component("inventory")),
		Catalog:   catalog.NewProductUseCase(txRunner, log.Component("catalog")),
		Issuer:    issuerUC,
		JWTSecret: cfg.JWT.Secret,
		AppName:   cfg.App.Name,
		Health:    health,
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
