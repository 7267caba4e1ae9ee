package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

func TestCoerceIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"AGUA625", "AGUA625"},
		{" AGUA1L\n", "AGUA1L"},
		{"AGUA20L", "AGUA20L"},
		{"agua625", "unknown"},
		{"ID: AGUA625", "unknown"},
		{"", "unknown"},
		{"no lo sé", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceIntent(tt.raw), tt.raw)
	}
}

func TestTrimHistoryKeepsSystemTurn(t *testing.T) {
	history := []models.HistoryTurn{{Role: "system", Content: "eres un asistente"}}
	for i := 0; i < 30; i++ {
		history = append(history, models.HistoryTurn{Role: "user", Content: "turno"})
	}

	trimmed := trimHistory(history, 20)
	require.Len(t, trimmed, 21)
	assert.Equal(t, "system", trimmed[0].Role)
	assert.Equal(t, "user", trimmed[1].Role)
}

func TestTrimHistoryUnderWindowUntouched(t *testing.T) {
	history := []models.HistoryTurn{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "hola"},
	}
	assert.Equal(t, history, trimHistory(history, 20))
	assert.Equal(t, history, trimHistory(history, 0))
}

func TestGeneratePromptSubstitutesFields(t *testing.T) {
	prompt := GeneratePrompt("Jo", "Pérez", "¿cuánto cuesta el galón?")

	assert.Contains(t, prompt, `NOMBRE_DEL_CLIENTE="Jo"`)
	assert.Contains(t, prompt, `APELLIDO_DEL_CLIENTE="Pérez"`)
	assert.Contains(t, prompt, `PREGUNTA_DEL_CLIENTE="¿cuánto cuesta el galón?"`)
	assert.Contains(t, prompt, "Galón de agua 20L")
	assert.NotContains(t, prompt, "{customer_name}")
	assert.NotContains(t, prompt, "{context}")
}

func newTestGemini(t *testing.T, reply string) *GeminiService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)

	return NewGeminiService(&config.Config{
		GeminiAPIKey:  "test-key",
		GeminiBaseURL: server.URL,
		GeminiModel:   "gemini-1.5-flash",
		HistoryWindow: 20,
	})
}

func TestDetermineCoercesReply(t *testing.T) {
	g := newTestGemini(t, "AGUA1L")

	intent, err := g.Determine(context.Background(), []models.HistoryTurn{
		{Role: "user", Content: "quiero botellas de un litro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AGUA1L", intent)
}

func TestRunFallsBackOnEmptyAnswer(t *testing.T) {
	g := newTestGemini(t, "")

	answer, err := g.Run(context.Background(), "Jo", "Pérez", "¿qué tienen?", nil)
	require.NoError(t, err)
	assert.Equal(t, "No se pudo generar respuesta", answer)
}
