package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zoi-aqua/aquabot-backend/internal/flow"
	"github.com/zoi-aqua/aquabot-backend/internal/services"
)

// turnTimeout bounds one full turn, including every backend and
// generative-text call it makes.
const turnTimeout = 45 * time.Second

// WhatsAppHandler handles WhatsApp webhook requests.
type WhatsAppHandler struct {
	dispatcher    *flow.Dispatcher
	twilioService *services.TwilioService
}

// NewWhatsAppHandler creates a new WhatsApp handler.
func NewWhatsAppHandler(dispatcher *flow.Dispatcher, twilioService *services.TwilioService) *WhatsAppHandler {
	return &WhatsAppHandler{
		dispatcher:    dispatcher,
		twilioService: twilioService,
	}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio.
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // WhatsApp number (whatsapp:+51987654321)
	To         string `form:"To"`   // Your Twilio number
	Body       string `form:"Body"` // Message text
	NumMedia   string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	log.Printf("📱 WhatsApp message from %s: %s", payload.From, payload.Body)

	// Process only incoming messages (not status updates).
	if payload.Body != "" && payload.From != "" {
		from := strings.TrimPrefix(payload.From, "whatsapp:")

		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()

		messages, err := h.dispatcher.Dispatch(ctx, from, payload.Body)
		if err != nil {
			log.Printf("❌ Error processing message: %v", err)
			messages = []flow.Message{{Body: "Lo siento, algo salió mal. Por favor, intenta nuevamente."}}
		}

		h.sendBatch(from, messages)
	}

	// Acknowledge webhook receipt.
	return c.SendStatus(fiber.StatusOK)
}

// sendBatch delivers the outbound messages in order, one network operation
// per message.
func (h *WhatsAppHandler) sendBatch(to string, messages []flow.Message) {
	for _, m := range messages {
		var err error
		if m.MediaURL != "" {
			err = h.twilioService.SendWhatsAppMedia(to, m.Body, m.MediaURL)
		} else {
			err = h.twilioService.SendWhatsAppMessage(to, m.Body)
		}
		if err != nil {
			log.Printf("❌ Failed to send WhatsApp response to %s: %v", to, err)
		}
	}
}

// TestWebhookPayload is the JSON body of the development test endpoint.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test messages without the Twilio transport.
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook received from %s: %s", payload.From, payload.Message)

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	messages, err := h.dispatcher.Dispatch(ctx, payload.From, payload.Message)
	if err != nil {
		log.Printf("❌ Error processing test message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "processing failed",
		})
	}

	responses := make([]fiber.Map, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, fiber.Map{
			"body":      m.Body,
			"media_url": m.MediaURL,
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"responses": responses,
	})
}
