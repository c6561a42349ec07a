package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/pricing"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

type PricingOverrideInput struct {
	PartyID   *uint  `json:"party_id"`
	GroupID   *uint  `json:"group_id"`
	ProductID string `json:"product_id" validate:"required"`

	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`

	DiscountType  string  `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue float64 `json:"discount_value" validate:"gte=0"`

	// Negative means "no override": fall through to the product's rates.
	IGSTRate float64 `json:"igst_rate" validate:"lte=100"`
	CGSTRate float64 `json:"cgst_rate" validate:"lte=100"`
	SGSTRate float64 `json:"sgst_rate" validate:"lte=100"`
}

// SetPricingOverride creates or replaces the override for a (party|group,
// product) pair and drops any cached quotes it shadows.
func SetPricingOverride(c *fiber.Ctx) error {
	var input PricingOverrideInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	if (input.PartyID == nil) == (input.GroupID == nil) {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			"override must target exactly one of party_id or group_id")
	}

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	override := models.PricingOverride{
		PartyID:       input.PartyID,
		GroupID:       input.GroupID,
		ProductID:     input.ProductID,
		BasePrice:     utils.DecimalFromFloat(input.BasePrice),
		SellingPrice:  utils.DecimalFromFloat(input.SellingPrice),
		DiscountType:  input.DiscountType,
		DiscountValue: utils.DecimalFromFloat(input.DiscountValue),
		IGSTRate:      input.IGSTRate,
		CGSTRate:      input.CGSTRate,
		SGSTRate:      input.SGSTRate,
	}

	conflictCols := []clause.Column{{Name: "party_id"}, {Name: "product_id"}}
	if input.GroupID != nil {
		conflictCols = []clause.Column{{Name: "group_id"}, {Name: "product_id"}}
	}
	err = tenantDB.Clauses(clause.OnConflict{
		Columns:   conflictCols,
		UpdateAll: true,
	}).Create(&override).Error
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not save pricing override")
	}

	invalidateQuotes(c, input.PartyID)

	return c.Status(fiber.StatusCreated).JSON(override)
}

func GetPricingOverrides(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	q := tenantDB.Model(&models.PricingOverride{})
	if partyID := c.Query("party_id"); partyID != "" {
		q = q.Where("party_id = ?", partyID)
	}
	if groupID := c.Query("group_id"); groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}

	var overrides []models.PricingOverride
	if err := q.Find(&overrides).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"overrides": overrides})
}

func DeletePricingOverride(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var override models.PricingOverride
	if err := tenantDB.First(&override, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "pricing override not found")
	}
	if err := tenantDB.Delete(&override).Error; err != nil {
		return err
	}

	invalidateQuotes(c, override.PartyID)

	return c.JSON(fiber.Map{"message": "success"})
}

// invalidateQuotes drops cached quotes affected by an override write.
// Group-scoped writes can touch any dealer in the group, so those flush the
// whole dealer prefix.
func invalidateQuotes(c *fiber.Ctx, partyID *uint) {
	if partyID != nil {
		_ = quoteCache.Invalidate(c.Context(), pricing.PartyPrefix(models.PartyTypeDealer, *partyID))
		return
	}
	_ = quoteCache.Invalidate(c.Context(), "quote:"+models.PartyTypeDealer+":")
}
