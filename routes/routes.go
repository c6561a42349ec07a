package routes

import (
	"github.com/gofiber/fiber/v2"

	"milkroute-backend/controllers"
	"milkroute-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Products
	protected.Post("/products", controllers.CreateProducts) // batch create
	protected.Get("/products", controllers.GetProducts)
	protected.Put("/products/:id", controllers.UpdateProduct)

	// Parties (dealers & customers) and dealer groups
	protected.Post("/party", controllers.CreateParty)
	protected.Get("/parties", controllers.GetParties)
	protected.Get("/party/:id", controllers.GetParty)
	protected.Put("/party/:id", controllers.UpdateParty)

	protected.Post("/dealer-group", controllers.CreateDealerGroup)
	protected.Get("/dealer-groups", controllers.GetDealerGroups)
	protected.Put("/dealer-group/:id", controllers.UpdateDealerGroup)

	// Pricing overrides (individual & group tiers)
	protected.Post("/pricing", controllers.SetPricingOverride)
	protected.Get("/pricing", controllers.GetPricingOverrides)
	protected.Delete("/pricing/:id", controllers.DeletePricingOverride)

	// Orders
	protected.Post("/order", controllers.CreateOrder)
	protected.Get("/orders", controllers.GetOrders)
	protected.Get("/order/:id", controllers.GetOrder)
	protected.Put("/orders/:id/convert", controllers.ConvertOrder)

	// Invoices
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Get("/documents/:id/versions", controllers.GetDocumentVersions)
	protected.Get("/documents/:id/receipts", controllers.ListReceipts)

	// Receipts (apply / edit / undo)
	protected.Post("/receipt", controllers.CreateReceipt)
	protected.Put("/receipt/:id", controllers.EditReceipt)
	protected.Put("/receipt/:id/undo", controllers.UndoReceipt)
}
