package controllers

import (
	"milkroute-backend/database"
	"milkroute-backend/middlewares"
	"milkroute-backend/models"
	"milkroute-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type DealerGroupInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func CreateDealerGroup(c *fiber.Ctx) error {
	var input DealerGroupInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	group := models.DealerGroup{
		Name:        input.Name,
		Description: input.Description,
		Active:      true,
	}
	if err := tenantDB.Create(&group).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create dealer group")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func GetDealerGroups(c *fiber.Ctx) error {
	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	var groups []models.DealerGroup
	if err := tenantDB.Where("active = ?", true).Find(&groups).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func UpdateDealerGroup(c *fiber.Ctx) error {
	var input DealerGroupInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	tenantDB, err := database.GetTenantDB(c)
	if err != nil {
		return err
	}

	res := tenantDB.Model(&models.DealerGroup{}).
		Where("id = ?", c.Params("id")).
		Updates(map[string]any{"name": input.Name, "description": input.Description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "dealer group not found")
	}

	var group models.DealerGroup
	if err := tenantDB.First(&group, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(group)
}
