package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxResponseLogBytes is the max length of a model response body to log in full (to avoid huge logs).
const maxResponseLogBytes = 8192

// Client wraps the OpenRouter chat completions endpoint.
type Client struct {
	defaultModel string
	llm          llms.Model
}

// NewClient creates a chat client against an OpenAI-compatible endpoint.
// baseURL defaults to the public OpenRouter API; apiKey is required.
func NewClient(apiKey, baseURL, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}
	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}

	log.Info().
		Str("base_url", baseURL).
		Str("default_model", defaultModel).
		Msg("LLM client initialized")

	return &Client{defaultModel: defaultModel, llm: model}, nil
}

// DefaultModel returns the configured default text model ID.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// chat sends a system/user prompt pair and returns the raw completion text.
// A transport error, non-2xx status, or empty completion is a model call failure;
// no retry is performed here.
func (c *Client) chat(ctx context.Context, caller, system, user, model string, temperature float64, maxTokens int) (string, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if model != "" && model != c.defaultModel {
		opts = append(opts, llms.WithModel(model))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model call failed: response has no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", fmt.Errorf("model call failed: empty completion")
	}

	logModelResponse(caller, content)
	return content, nil
}

// logModelResponse logs model response text, truncating if over maxResponseLogBytes.
func logModelResponse(caller, raw string) {
	if len(raw) <= maxResponseLogBytes {
		log.Debug().Str("caller", caller).Str("model_response", raw).Msg("Model response")
		return
	}
	log.Debug().
		Str("caller", caller).
		Str("model_response", raw[:maxResponseLogBytes]+"... [truncated]").
		Int("model_response_len", len(raw)).
		Msg("Model response")
}

// ListModels returns the curated list of selectable text models.
func (c *Client) ListModels() []models.ModelInfo {
	return []models.ModelInfo{
		{
			ID:            "meta-llama/llama-3.1-8b-instruct:free",
			Name:          "Llama 3.1 8B (free)",
			Description:   "Best free model, excellent quality",
			ContextLength: 8192,
		},
		{
			ID:            "microsoft/phi-3-mini-4k-instruct:free",
			Name:          "Phi-3 Mini (free)",
			Description:   "Fastest free model",
			ContextLength: 4096,
		},
		{
			ID:            "google/gemini-flash-1.5:free",
			Name:          "Gemini Flash (free)",
			Description:   "Google's free model",
			ContextLength: 1048576,
		},
		{
			ID:            "mistralai/mistral-7b-instruct:free",
			Name:          "Mistral 7B (free)",
			Description:   "European alternative",
			ContextLength: 32768,
		},
	}
}
