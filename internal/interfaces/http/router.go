// Package http expone la API del punto de venta sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pos/internal/application/catalog"
	"github.com/tu-usuario/farmacia-pos/internal/application/checkout"
	"github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *catalog.ProductUseCase
	ReceiveStock *inventory.ReceiveStockUseCase
	Queries      *inventory.QueryUseCase
	PriceOracle  *inventory.PriceOracle
	Sweeper      Sweeper
	Guard        checkout.Revalidator
	Settlement   *checkout.SettlementUseCase
	SaleUC       *sales.SaleUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Queries)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/reorder-list", productHandler.ReorderList)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", productHandler.Deactivate)

	// Inventario por lotes
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.ReceiveStock, deps.Queries, deps.PriceOracle, deps.Sweeper)
	invGroup.Post("/receipts", inventoryHandler.ReceiveStock)
	invGroup.Post("/sweep", inventoryHandler.Sweep)
	invGroup.Get("/products/:id/batches", inventoryHandler.ListBatches)
	invGroup.Get("/products/:id/availability", inventoryHandler.Availability)
	invGroup.Get("/products/:id/price", inventoryHandler.CurrentPrice)
	invGroup.Get("/products/:id/movements", inventoryHandler.MovementsByProduct)
	invGroup.Get("/batches/:id/movements", inventoryHandler.MovementsByBatch)

	// Caja
	checkoutGroup := api.Group("/checkout")
	checkoutHandler := NewCheckoutHandler(deps.Guard, deps.Settlement)
	checkoutGroup.Post("/validate", checkoutHandler.ValidateCart)
	checkoutGroup.Post("/settle", checkoutHandler.Settle)

	// Ventas comprometidas
	salesGroup := api.Group("/sales")
	salesHandler := NewSalesHandler(deps.SaleUC)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesHandler.DownloadReceipt)
}

// actorID identifica al operador de caja; sin capa de autenticación, viene
// del header y cae a un valor fijo para uso en mostrador.
func actorID(c *fiber.Ctx) string {
	if actor := c.Get("X-Actor-Id"); actor != "" {
		return actor
	}
	return "mostrador"
}
