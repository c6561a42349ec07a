package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PartyInput struct {
	Type            string  `json:"type" validate:"required,oneof=dealer customer"`
	Name            string  `json:"name" validate:"required"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	PhoneNumber     string  `json:"phone_number"`
	Email           string  `json:"email" validate:"omitempty,email"`
	GroupID         *uint   `json:"group_id"`
	CreditLimit     float64 `json:"credit_limit" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

func CreateParty(c *fiber.Ctx) error {
	var input PartyInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	// Group membership is a dealer concept.
	if input.Type == models.PartyTypeCustomer && input.GroupID != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "customers cannot join a dealer group")
	}

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	party := models.Party{
		Type:            input.Type,
		Name:            input.Name,
		Address:         input.Address,
		City:            input.City,
		PhoneNumber:     input.PhoneNumber,
		Email:           input.Email,
		GroupID:         input.GroupID,
		CreditLimit:     utils.DecimalFromFloat(input.CreditLimit),
		DiscountPercent: input.DiscountPercent,
		Active:          true,
	}
	if err := tenantDB.Create(&party).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create party")
	}
	return c.Status(fiber.StatusCreated).JSON(party)
}

func GetParties(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	q := tenantDB.Preload("Group").Where("active = ?", true)
	if partyType := c.Query("type"); partyType != "" {
		q = q.Where("type = ?", partyType)
	}

	var parties []models.Party
	if err := q.Find(&parties).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"parties": parties})
}

func GetParty(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var party models.Party
	if err := tenantDB.Preload("Group").First(&party, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "party not found")
	}
	return c.JSON(party)
}

type PartyPatch struct {
	Name            *string  `json:"name"`
	Address         *string  `json:"address"`
	City            *string  `json:"city"`
	PhoneNumber     *string  `json:"phone_number"`
	Email           *string  `json:"email"`
	GroupID         *uint    `json:"group_id"`
	CreditLimit     *float64 `json:"credit_limit"`
	DiscountPercent *float64 `json:"discount_percent"`
}

// UpdateParty applies a partial update. The current balance is deliberately
// not patchable here; only the ledger engine moves it.
func UpdateParty(c *fiber.Ctx) error {
	var patch PartyPatch
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
	res := tenantDB.Model(&models.Party{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "party not found")
	}

	var party models.Party
	if err := tenantDB.Preload("Group").First(&party, "id = ?", id).Error; err != nil {
		return err
	}
	return c.JSON(party)
}
