package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Avicola-api/internal/application/auth"
	"github.com/jhoicas/Avicola-api/internal/application/ledger"
	"github.com/jhoicas/Avicola-api/internal/application/mutation"
	"github.com/jhoicas/Avicola-api/internal/application/usecase"
	"github.com/jhoicas/Avicola-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC  *usecase.CompanyUseCase
	CoopUC     *usecase.CoopUseCase
	FlockUC    *usecase.FlockUseCase
	MutationUC *mutation.UseCase
	LedgerUC   *ledger.UseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Coops (protegido)
	coops := protected.Group("/coops")
	coopHandler := NewCoopHandler(deps.CoopUC)
	coops.Post("/", coopHandler.Create)
	coops.Get("/", coopHandler.List)
	coops.Get("/:id", coopHandler.GetByID)

	// Flocks (protegido)
	flocks := protected.Group("/flocks")
	flockHandler := NewFlockHandler(deps.FlockUC)
	mutationHandler := NewMutationHandler(deps.MutationUC)
	flocks.Post("/", flockHandler.Create)
	flocks.Get("/", flockHandler.List)
	flocks.Get("/:id", flockHandler.GetByID)
	flocks.Post("/:id/close", flockHandler.Close)
	flocks.Get("/:id/batches/available", mutationHandler.AvailableBatches)

	// Mutations (protegido; borrar requiere admin o galponero)
	mutations := protected.Group("/mutations")
	mutations.Post("/preview", mutationHandler.Preview)
	mutations.Post("/", mutationHandler.ProcessFifo)
	mutations.Post("/manual", mutationHandler.ProcessManual)
	mutations.Get("/:id", mutationHandler.GetByID)
	mutations.Delete("/:id", RequireRole(entity.RoleAdmin, entity.RoleGalponero), mutationHandler.Delete)

	// Ledger de bajas y ventas (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Post("/depletion", ledgerHandler.RecordDepletion)
	ledgerGroup.Post("/sales", ledgerHandler.RecordSales)
}
