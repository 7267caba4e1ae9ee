package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/handlers"
	"github.com/zoi-aqua/aquabot-backend/internal/middleware"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, cfg *config.Config, whatsapp *handlers.WhatsAppHandler, storageType string) {
	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to AquaBot Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":        "/health",
				"webhook":       "/webhook/whatsapp",
				"test_whatsapp": "/test/whatsapp",
			},
		})
	})

	app.Get("/health", handlers.HealthCheck(storageType, cfg.TwilioAccountSID != ""))

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	if cfg.Environment == "development" {
		// Development: skip signature validation for ngrok
		webhooks.Post("/whatsapp", whatsapp.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(cfg.TwilioAuthToken), whatsapp.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.Environment == "development" {
		app.Post("/test/whatsapp", whatsapp.HandleTestWebhook)
	}
}
