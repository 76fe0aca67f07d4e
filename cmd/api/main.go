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

	"github.com/jhoicas/Avicola-api/internal/application/auth"
	"github.com/jhoicas/Avicola-api/internal/application/ledger"
	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/application/usecase"
	"github.com/jhoicas/Avicola-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Avicola-api/internal/interfaces/http"
	"github.com/jhoicas/Avicola-api/pkg/config"
	"github.com/jhoicas/Avicola-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	coopRepo := postgres.NewCoopRepository(pool)
	flockRepo := postgres.NewFlockRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	mutationRepo := postgres.NewMutationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	engineCfg := mutation.EngineConfig{
		AllowSameDayRepeatedInput:       cfg.Engine.AllowSameDayRepeatedInput,
		AllowSameLivestockRepeatedInput: cfg.Engine.AllowSameLivestockRepeatedInput,
		AllowSameLivestockSameDay:       cfg.Engine.AllowSameLivestockSameDay,
		HardDeleteOnReversal:            cfg.Engine.HardDeleteOnReversal,
		CreateDestinationFlock:          cfg.Engine.CreateDestinationFlock,
		MaxBatchAgeDays:                 cfg.Engine.MaxBatchAgeDays,
	}

	mutationUC := mutation.NewUseCase(txRunner, flockRepo, batchRepo, mutationRepo, engineCfg, log.Component("mutation"))
	ledgerUC := ledger.NewUseCase(txRunner, flockRepo, engineCfg, log.Component("ledger"))
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	coopUC := usecase.NewCoopUseCase(coopRepo)
	flockUC := usecase.NewFlockUseCase(txRunner, flockRepo, coopRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

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
		Title:    "Avicola Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:  companyUC,
		CoopUC:     coopUC,
		FlockUC:    flockUC,
		MutationUC: mutationUC,
		LedgerUC:   ledgerUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
