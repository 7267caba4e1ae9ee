package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
)

// TwilioService sends WhatsApp messages via Twilio. When credentials are not
// configured the service is nil-safe: messages are logged instead of sent so
// the bot stays usable in development.
type TwilioService struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
}

// NewTwilioService creates a new Twilio service from the configuration.
// Returns (nil, nil) when credentials are absent.
func NewTwilioService(cfg *config.Config) (*TwilioService, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppFrom == "" {
		return nil, nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioService{
		client: client,
		from:   cfg.TwilioWhatsAppFrom,
	}, nil
}

// SendWhatsAppMessage sends a WhatsApp text message.
func (t *TwilioService) SendWhatsAppMessage(to string, body string) error {
	if t == nil {
		log.Printf("📤 WhatsApp (not sent - Twilio not configured) to %s: %s", to, body)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// SendWhatsAppMedia sends a WhatsApp message with an attached media URL
// (used for the payment QR image).
func (t *TwilioService) SendWhatsAppMedia(to string, body string, mediaURL string) error {
	if t == nil {
		log.Printf("📤 WhatsApp media (not sent - Twilio not configured) to %s: %s [%s]", to, body, mediaURL)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)
	params.SetMediaUrl([]string{mediaURL})

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp media message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp media message sent! SID: %s", *resp.Sid)
	return nil
}
