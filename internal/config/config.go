package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for optional settings.
const (
	DefaultStoreAddress  = "Jose Carlos Mariategui 451 Amarilis, Huánuco"
	DefaultPaymentQRURL  = "https://example.com/qr-pago.png"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultHistoryWindow = 20
)

// Config holds every recognized option, built once in main and injected into
// the dispatcher and adapters. No package reads the environment after startup.
type Config struct {
	Port string

	// Order backend
	BackendURL          string
	ConfirmPaymentToken string

	// Generative text
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	HistoryWindow int

	// Store details
	StoreAddress string
	PaymentQRURL string

	// Twilio WhatsApp transport (optional - transport degrades to log-only)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	// Optional persistent session storage
	DatabaseURL string

	Environment string
}

// Load reads the configuration from the environment. Missing required
// credentials are a startup-fatal condition, not a per-turn error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		BackendURL:          os.Getenv("BACKEND_URL"),
		ConfirmPaymentToken: os.Getenv("CONFIRM_PAYMENT_TOKEN"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		GeminiModel:         getEnv("GEMINI_MODEL", DefaultGeminiModel),
		StoreAddress:        getEnv("STORE_ADDRESS", DefaultStoreAddress),
		PaymentQRURL:        getEnv("PAYMENT_QR_URL", DefaultPaymentQRURL),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:  os.Getenv("TWILIO_WHATSAPP_FROM"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Environment:         getEnv("ENVIRONMENT", "development"),
	}

	cfg.HistoryWindow = DefaultHistoryWindow
	if raw := os.Getenv("HISTORY_WINDOW"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid HISTORY_WINDOW %q", raw)
		}
		cfg.HistoryWindow = n
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
