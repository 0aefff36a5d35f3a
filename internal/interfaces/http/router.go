package http

import (
	"context"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/application/catalog"
	"github.com/AstralMoonlight/torn/internal/application/folio"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/application/issuer"
	"github.com/AstralMoonlight/torn/internal/application/sales"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/gofiber/fiber/v2"
)

// HealthChecker lo cumple el pool de PostgreSQL; nil = sin chequeo de dependencias.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sales     *sales.SaleUseCase
	Cash      *cash.Manager
	Folios    *folio.RangeUseCase
	Inventory *inventory.RegisterMovementUseCase
	Catalog   *catalog.ProductUseCase
	Issuer    *issuer.ProfileUseCase
	JWTSecret string
	AppName   string
	Health    HealthChecker
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	saleHandler := NewSaleHandler(deps.Sales)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", RequireCapability(entity.CapSell), saleHandler.Create)
	salesGroup.Post("/returns", RequireCapability(entity.CapRefund), saleHandler.CreateReturn)
	salesGroup.Get("/:id", RequireCapability(entity.CapSell), saleHandler.GetByID)
	salesGroup.Get("/:id/document", RequireCapability(entity.CapSell), saleHandler.Document)

	cashHandler := NewCashHandler(deps.Cash)
	cashGroup := api.Group("/cash", RequireCapability(entity.CapOperateCash))
	cashGroup.Post("/open", cashHandler.Open)
	cashGroup.Post("/close", cashHandler.Close)
	cashGroup.Get("/status", cashHandler.Status)

	folioHandler := NewFolioHandler(deps.Folios)
	folios := api.Group("/folios", RequireCapability(entity.CapManageFolios))
	folios.Post("/", folioHandler.Register)
	folios.Get("/", folioHandler.List)

	inventoryHandler := NewInventoryHandler(deps.Inventory)
	invGroup := api.Group("/inventory", RequireCapability(entity.CapManageInventory))
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/products/:id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/products/:id/verify", inventoryHandler.Verify)

	productHandler := NewProductHandler(deps.Catalog)
	products := api.Group("/products", RequireCapability(entity.CapManageCatalog))
	products.Post("/:id/deactivate", productHandler.Deactivate)

	issuerHandler := NewIssuerHandler(deps.Issuer)
	issuerGroup := api.Group("/issuer", RequireCapability(entity.CapManageIssuer))
	issuerGroup.Get("/", issuerHandler.Get)
	issuerGroup.Put("/", issuerHandler.Configure)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Health.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	}
}
