package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Trazabilidad-api/internal/application/coordinator"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Trazabilidad-api/internal/application/lots"
	"github.com/jhoicas/Trazabilidad-api/internal/application/products"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lots        *lots.Registry
	Products    *products.UseCase
	Coordinator *coordinator.Coordinator
	Ledger      *ledger.Ledger
	History     repository.HistoryRepository
	JWTSecret   string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; el rol del token restringe las operaciones por eslabón.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	manufacturerOnly := RequireRole(string(entity.RoleManufacturer))
	hospitalOnly := RequireRole(string(entity.RoleHospital))

	// Maestro de productos (solo fabricantes)
	productsGroup := protected.Group("/products", manufacturerOnly)
	productHandler := NewProductHandler(deps.Products)
	productsGroup.Post("/", productHandler.Create)
	productsGroup.Get("/", productHandler.List)
	productsGroup.Patch("/:id/status", productHandler.SetStatus)

	// Producción de lotes (solo fabricantes)
	lotsGroup := protected.Group("/lots", manufacturerOnly)
	lotHandler := NewLotHandler(deps.Lots)
	lotsGroup.Post("/", lotHandler.Create)

	// Embarques (la matriz de roles remitente→receptor se valida en el coordinador)
	shipments := protected.Group("/shipments")
	shipmentHandler := NewShipmentHandler(deps.Coordinator)
	shipments.Post("/", shipmentHandler.Create)
	shipments.Post("/:id/accept", shipmentHandler.Accept)
	shipments.Post("/:id/reject", shipmentHandler.Reject)

	// Tratamientos y recalls (solo hospitales)
	treatments := protected.Group("/treatments", hospitalOnly)
	treatmentHandler := NewTreatmentHandler(deps.Coordinator)
	treatments.Post("/", treatmentHandler.Register)
	treatments.Post("/:id/recall", treatmentHandler.Recall)

	// Devoluciones
	returns := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.Coordinator)
	returns.Post("/", returnHandler.Create)
	returns.Post("/:id/approve", returnHandler.Approve)
	returns.Post("/:id/reject", returnHandler.Reject)

	// Inventario y desecho
	inventory := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Coordinator)
	inventory.Get("/count", inventoryHandler.Count)
	inventory.Get("/codes", inventoryHandler.Codes)
	inventory.Post("/disposals", hospitalOnly, inventoryHandler.Dispose)

	// Historial de auditoría
	history := protected.Group("/history")
	historyHandler := NewHistoryHandler(deps.History)
	history.Get("/", historyHandler.List)
}
