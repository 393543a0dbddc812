package handlers

import "github.com/gofiber/fiber/v2"

// HandleHealth handles GET /health. It does not check dependencies.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": "CV Project is running",
	})
}
