package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/service"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateReceipt applies a payment against an order or invoice. An unlinked
// receipt carrying sale lines creates an invoice on the fly.
func CreateReceipt(c *fiber.Ctx) error {
	var req service.ReceiptRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	receipt, err := svc.ApplyReceipt(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

type ReceiptEditInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// EditReceipt changes an active receipt's amount; the delta propagates to the
// linked document and the party balance.
func EditReceipt(c *fiber.Ctx) error {
	id := utils.ParseIntDefault(c.Params("id"), 0)
	if id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid receipt id")
	}

	var input ReceiptEditInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	receipt, err := svc.EditReceipt(c.Context(), uint(id), input.Amount)
	if err != nil {
		return err
	}
	return c.JSON(receipt)
}

// UndoReceipt reverses an active receipt exactly once.
func UndoReceipt(c *fiber.Ctx) error {
	id := utils.ParseIntDefault(c.Params("id"), 0)
	if id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid receipt id")
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	receipt, err := svc.UndoReceipt(c.Context(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(receipt)
}

// ListReceipts returns every receipt linked to a document, undone included.
func ListReceipts(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var receipts []models.Receipt
	docID := c.Params("id")
	err = tenantDB.Where("order_id = ? OR invoice_id = ?", docID, docID).
		Order("paid_at").Find(&receipts).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"receipts": receipts})
}
