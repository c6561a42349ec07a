package middlewares

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"milkroute-backend/errs"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Business errors from the financial core
	if kind, ok := errs.KindOf(err); ok {
		status := fiber.StatusInternalServerError
		switch kind {
		case errs.Validation:
			status = fiber.StatusUnprocessableEntity
		case errs.NotFound:
			status = fiber.StatusNotFound
		case errs.Conflict:
			status = fiber.StatusConflict
		case errs.Consistency:
			// The books disagree with an invariant; keep it loud.
			log.Printf("consistency error: %v", err)
		}
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}

	// 4) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
