package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/snappy-loop/decks/internal/models"
)

// URLProvider builds a hosted render URL instead of fetching bytes. The
// remote service rasterizes on first view, so this provider cannot fail and
// terminates every chain.
type URLProvider struct {
	baseURL string
	width   int
	height  int
}

func NewURLProvider(baseURL string, width, height int) *URLProvider {
	return &URLProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		width:   width,
		height:  height,
	}
}

func (p *URLProvider) Name() string {
	return "url"
}

func (p *URLProvider) Generate(_ context.Context, prompt string) (*models.MediaAsset, error) {
	enhanced := prompt + ", professional, high quality, detailed"
	asset := fmt.Sprintf("%s/%s?width=%d&height=%d&nologo=true",
		p.baseURL, url.PathEscape(enhanced), p.width, p.height)
	return &models.MediaAsset{Provider: models.ProviderURL, Payload: asset}, nil
}
