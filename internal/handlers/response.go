package handlers

import (
	"errors"

	"inventory/internal/logger"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeProductError maps a product service error to its HTTP status and body.
func writeProductError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	case errors.Is(err, services.ErrMissingPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product data is missing.",
		})
	case errors.Is(err, services.ErrIDMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id in the body does not match the URL",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	default:
		logger.FromCtx(c, log).Error("Product operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete the product operation",
			"error":   err.Error(),
		})
	}
}
