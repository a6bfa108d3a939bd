// Package presenter shapes service results into HTTP responses.
package presenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/validation"
)

// Message writes {"message": msg} with status.
func Message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// Error renders validation failures as 400 with per-field messages and any
// other error as 500.
func Error(c *fiber.Ctx, err error) error {
	if verr, ok := validation.As(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	}
	return Message(c, fiber.StatusInternalServerError, err.Error())
}

// BadBody answers a request whose body could not be parsed.
func BadBody(c *fiber.Ctx, err error) error {
	return Message(c, fiber.StatusBadRequest, err.Error())
}
