package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
	"google.golang.org/api/option"
)

// GeminiProvider generates images through the genai SDK with strict IMAGE
// modality. It sits between the inference providers and the URL fallback.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider dials the genai service. A connection error here is
// surfaced at startup rather than per-slide.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini/" + p.model
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Generate expects a native image Blob in the response; text-only responses
// count as failure so the chain can advance.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (*models.MediaAsset, error) {
	model := p.client.GenerativeModel(p.model)
	setResponseModality(model, []string{"IMAGE"})

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("genai generate: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			blob, ok := part.(genai.Blob)
			if !ok || len(blob.Data) == 0 {
				continue
			}
			mime := blob.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			log.Debug().
				Str("model", p.model).
				Int("image_bytes", len(blob.Data)).
				Str("mime_type", mime).
				Msg("Gemini image generated")
			return &models.MediaAsset{
				Provider: models.ProviderGemini,
				Payload:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob.Data),
			}, nil
		}
	}

	log.Warn().
		Str("model", p.model).
		Int("candidates", len(resp.Candidates)).
		Msg("No image blob in genai response")
	return nil, fmt.Errorf("no image blob in response")
}

// setResponseModality sets model.ResponseModality when the genai SDK exposes
// it. Uses reflection so it no-ops on older SDKs without the field.
func setResponseModality(model *genai.GenerativeModel, modalities []string) {
	v := reflect.ValueOf(model).Elem()
	f := v.FieldByName("ResponseModality")
	if !f.IsValid() || !f.CanSet() {
		return
	}
	if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
		f.Set(reflect.ValueOf(modalities))
	}
}
