package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// IntentUnknown is returned when the classifier cannot name a product.
const IntentUnknown = "unknown"

// knownIntents is the closed set of product identifiers the intent
// classification call may return. Anything else is normalized to unknown.
var knownIntents = map[string]bool{
	"AGUA625": true,
	"AGUA1L":  true,
	"AGUA20L": true,
}

// GeminiService talks to the Gemini generative-text API through its
// OpenAI-compatible endpoint.
type GeminiService struct {
	client        *openai.Client
	model         string
	historyWindow int
	timeout       time.Duration
}

// NewGeminiService creates a generative-text client from the configuration.
func NewGeminiService(cfg *config.Config) *GeminiService {
	clientConfig := openai.DefaultConfig(cfg.GeminiAPIKey)
	clientConfig.BaseURL = cfg.GeminiBaseURL

	return &GeminiService{
		client:        openai.NewClientWithConfig(clientConfig),
		model:         cfg.GeminiModel,
		historyWindow: cfg.HistoryWindow,
		timeout:       30 * time.Second,
	}
}

func (g *GeminiService) chat(ctx context.Context, systemPrompt string, history []models.HistoryTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range trimHistory(history, g.historyWindow) {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("generative-text request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty generative-text response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Run generates a free-form sales-assistant answer to the customer's question.
func (g *GeminiService) Run(ctx context.Context, name, lastName, question string, history []models.HistoryTurn) (string, error) {
	answer, err := g.chat(ctx, GeneratePrompt(name, lastName, question), history)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "No se pudo generar respuesta", nil
	}
	return answer, nil
}

// Determine classifies which product the conversation is about. The output is
// coerced to the closed set of product IDs or "unknown".
func (g *GeminiService) Determine(ctx context.Context, history []models.HistoryTurn) (string, error) {
	raw, err := g.chat(ctx, GeneratePromptDetermine(), history)
	if err != nil {
		return IntentUnknown, err
	}
	return CoerceIntent(raw), nil
}

// CoerceIntent normalizes a classifier output to a known product ID or
// "unknown".
func CoerceIntent(raw string) string {
	intent := strings.TrimSpace(raw)
	if knownIntents[intent] {
		return intent
	}
	return IntentUnknown
}

// trimHistory keeps the last window turns so request payloads stay bounded as
// the conversation grows. The leading system turn, when present, survives the
// trim.
func trimHistory(history []models.HistoryTurn, window int) []models.HistoryTurn {
	if window <= 0 || len(history) <= window {
		return history
	}

	trimmed := make([]models.HistoryTurn, 0, window+1)
	if history[0].Role == "system" {
		trimmed = append(trimmed, history[0])
	}
	return append(trimmed, history[len(history)-window:]...)
}
