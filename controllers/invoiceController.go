package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/service"

	"github.com/gofiber/fiber/v2"
)

// CreateInvoice creates an invoice directly for a one-off sale. Invoices for
// regular orders come from the convert endpoint instead.
func CreateInvoice(c *fiber.Ctx) error {
	var req service.DocumentRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	svc, err := tenantService(c)
	if err != nil {
		return err
	}

	invoice, err := svc.CreateInvoice(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func GetInvoices(c *fiber.Ctx) error {
	return listDocuments(c, models.DocumentKindInvoice)
}

func GetInvoice(c *fiber.Ctx) error {
	return getDocument(c, models.DocumentKindInvoice)
}

// GetDocumentVersions lists the immutable snapshots taken for a document.
func GetDocumentVersions(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var versions []models.DocumentVersion
	err = tenantDB.Where("document_id = ?", c.Params("id")).
		Order("version_no").Find(&versions).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"versions": versions})
}
