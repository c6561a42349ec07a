package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/service"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder places an order: pricing is resolved server-side per line and
// snapshotted into the document.
func CreateOrder(c *fiber.Ctx) error {
	var req service.DocumentRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	order, err := svc.CreateOrder(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// ConvertOrder freezes an order's totals into an invoice.
func ConvertOrder(c *fiber.Ctx) error {
	id := utils.ParseIntDefault(c.Params("id"), 0)
	if id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	invoice, err := svc.ConvertOrderToInvoice(c.Context(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

func GetOrders(c *fiber.Ctx) error {
	return listDocuments(c, models.DocumentKindOrder)
}

func GetOrder(c *fiber.Ctx) error {
	return getDocument(c, models.DocumentKindOrder)
}

func listDocuments(c *fiber.Ctx, kind string) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	q := tenantDB.Preload("Party").Where("kind = ?", kind).Order("created_at DESC")
	if status := c.Query("payment_status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"documents": docs})
}

func getDocument(c *fiber.Ctx, kind string) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var doc models.Document
	err = tenantDB.Preload("Party").Preload("Items").
		First(&doc, "id = ? AND kind = ?", c.Params("id"), kind).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, kind+" not found")
	}
	return c.JSON(doc)
}
