package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck returns the health status of the API.
func HealthCheck(storageType string, twilioConfigured bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "AquaBot Backend API",
			"version": "1.0.0",
			"storage": storageType,
			"whatsapp": fiber.Map{
				"configured": twilioConfigured,
			},
		})
	}
}
