package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	SKU          string  `json:"sku" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`

	IGSTRate     float64 `json:"igst_rate" validate:"gte=0,lte=100"`
	CGSTRate     float64 `json:"cgst_rate" validate:"gte=0,lte=100"`
	SGSTRate     float64 `json:"sgst_rate" validate:"gte=0,lte=100"`
	TaxInclusive bool    `json:"tax_inclusive"`

	PackagingType   string  `json:"packaging_type" validate:"omitempty,oneof=bottle pouch cup crate carton bag box"`
	SizeValue       float64 `json:"size_value" validate:"gte=0"`
	SizeUnit        string  `json:"size_unit" validate:"omitempty,oneof=ml L g kg"`
	UnitsPerPackage int     `json:"units_per_package" validate:"gte=0"`
}

// CreateProducts creates a batch of products in one transaction.
func CreateProducts(c *fiber.Ctx) error {
	var inputs []ProductInput
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no products given")
	}

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var created []models.Product
	for i := range inputs {
		utils.NormalizeDTO(&inputs[i])
		if err := middlewares.ValidateStruct(inputs[i]); err != nil {
			return err
		}
		if inputs[i].IGSTRate > 0 && (inputs[i].CGSTRate > 0 || inputs[i].SGSTRate > 0) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "igst and cgst/sgst are mutually exclusive")
		}

		product := models.Product{
			SKU:          inputs[i].SKU,
			Name:         inputs[i].Name,
			Description:  inputs[i].Description,
			SellingPrice: decimal.NewFromFloat(inputs[i].SellingPrice),
			CostPrice:    decimal.NewFromFloat(inputs[i].CostPrice),
			IGSTRate:     inputs[i].IGSTRate,
			CGSTRate:     inputs[i].CGSTRate,
			SGSTRate:     inputs[i].SGSTRate,
			TaxInclusive: inputs[i].TaxInclusive,
			Packaging: models.Packaging{
				Type:            inputs[i].PackagingType,
				SizeValue:       inputs[i].SizeValue,
				SizeUnit:        inputs[i].SizeUnit,
				UnitsPerPackage: inputs[i].UnitsPerPackage,
			},
			Active: true,
		}
		if err := tenantDB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not create product "+product.SKU)
		}
		created = append(created, product)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func GetProducts(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var products []models.Product
	if err := tenantDB.Where("active = ?", true).Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

type ProductPatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	SellingPrice *float64 `json:"selling_price"`
	CostPrice    *float64 `json:"cost_price"`
	IGSTRate     *float64 `json:"igst_rate"`
	CGSTRate     *float64 `json:"cgst_rate"`
	SGSTRate     *float64 `json:"sgst_rate"`
	TaxInclusive *bool    `json:"tax_inclusive"`
}

// UpdateProduct applies a partial update. Documents already created keep their
// snapshotted prices regardless.
func UpdateProduct(c *fiber.Ctx) error {
	var patch ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&patch)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&patch, nil)
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	id := c.Params("id")
	res := tenantDB.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	var product models.Product
	if err := tenantDB.First(&product, "id = ?", id).Error; err != nil {
		return err
	}
	return c.JSON(product)
}
