package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

const maxImageBytes = 10 << 20

// InferenceProvider calls a hosted text-to-image model over the serverless
// inference protocol: POST {"inputs": prompt}, raw image bytes on success.
type InferenceProvider struct {
	client   *http.Client
	endpoint string
	model    string
	token    string
}

// NewInferenceProvider targets one model under baseURL. The token is optional;
// anonymous requests work against public models at reduced rate limits.
func NewInferenceProvider(client *http.Client, baseURL, model, token string) *InferenceProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &InferenceProvider{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + model,
		model:    model,
		token:    token,
	}
}

func (p *InferenceProvider) Name() string {
	return "inference/" + p.model
}

func (p *InferenceProvider) Generate(ctx context.Context, prompt string) (*models.MediaAsset, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, fmt.Errorf("encoding inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusServiceUnavailable:
		// Cold model still loading; the chain moves on.
		log.Debug().Str("model", p.model).Msg("Inference model loading")
		return nil, ErrUnavailable
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, snippet)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("inference endpoint returned empty body")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/json") {
		mime = "image/png"
	}

	log.Debug().
		Str("model", p.model).
		Int("image_bytes", len(data)).
		Str("mime_type", mime).
		Msg("Inference image generated")

	return &models.MediaAsset{
		Provider: models.ProviderInference,
		Payload:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
