package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_URL", "http://localhost:8000/api")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000/api", cfg.BackendURL)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.GeminiBaseURL)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, DefaultStoreAddress, cfg.StoreAddress)
	assert.Equal(t, DefaultPaymentQRURL, cfg.PaymentQRURL)
	assert.Equal(t, DefaultHistoryWindow, cfg.HistoryWindow)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HISTORY_WINDOW", "8")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_ADDRESS", "Av. Central 123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 8, cfg.HistoryWindow)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "Av. Central 123", cfg.StoreAddress)
}

func TestLoadMissingBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("GEMINI_API_KEY", "test-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoadMissingGeminiKey(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8000/api")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadInvalidHistoryWindow(t *testing.T) {
	setRequired(t)

	for _, raw := range []string{"0", "-3", "veinte"} {
		t.Setenv("HISTORY_WINDOW", raw)
		_, err := Load()
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "HISTORY_WINDOW")
	}
}
