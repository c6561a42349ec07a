package controllers

import (
	"github.com/gofiber/fiber/v2"

	"milkroute-backend/database"
	"milkroute-backend/pricing"
	"milkroute-backend/service"
	"milkroute-backend/store"
)

// quoteCache is shared across requests; set once at startup. Defaults to a
// no-op cache so the resolver works without Redis.
var quoteCache pricing.QuoteCache = pricing.NoopQuoteCache{}

func SetQuoteCache(cache pricing.QuoteCache) {
	if cache != nil {
		quoteCache = cache
	}
}

// tenantService builds the orchestrator over the request's tenant transaction.
func tenantService(c *fiber.Ctx) (*service.Service, error) {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}
	st := store.NewGorm(db)
	return service.New(st, pricing.NewResolver(st, quoteCache)), nil
}
