package media

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

// ChartRenderer rasterizes a chart spec into an inline asset.
type ChartRenderer interface {
	Render(spec *models.ChartSpec) (*models.MediaAsset, error)
}

// Resolver decides what visual each slide gets: a rendered chart when the
// slide carries a usable spec, otherwise an image from the provider chain.
type Resolver struct {
	charts       ChartRenderer
	chain        *Chain
	slideTimeout time.Duration
}

func NewResolver(charts ChartRenderer, chain *Chain, slideTimeout time.Duration) *Resolver {
	return &Resolver{charts: charts, chain: chain, slideTimeout: slideTimeout}
}

// ResolveSlide fills exactly one of the slide's asset fields. A failed chart
// render falls through to the image chain; the slide is never left with both
// assets or, given a terminal provider, with neither.
func (r *Resolver) ResolveSlide(ctx context.Context, slide *models.Slide) {
	ctx, cancel := context.WithTimeout(ctx, r.slideTimeout)
	defer cancel()

	if slide.ChartSpec != nil && slide.ChartSpec.Needed && slide.ChartSpec.Valid() {
		asset, err := r.charts.Render(slide.ChartSpec)
		if err == nil {
			slide.ChartAsset = asset
			slide.ImageAsset = nil
			return
		}
		log.Warn().Err(err).
			Str("slide_id", slide.ID).
			Str("chart_type", slide.ChartSpec.Type).
			Msg("Chart render failed, falling back to image chain")
	}

	prompt := slide.ImagePrompt
	if prompt == "" {
		prompt = "Presentation visual for: " + slide.Title
	}

	asset, attempts := r.chain.Resolve(ctx, prompt)
	for _, a := range attempts {
		log.Debug().
			Str("slide_id", slide.ID).
			Str("provider", a.Provider).
			Str("outcome", a.Outcome).
			Dur("latency", a.Latency).
			Msg("Media attempt")
	}
	if asset == nil {
		// Only reachable with a chain that does not end in a terminal
		// provider. The marker keeps the slide explicitly single-asset.
		log.Error().
			Str("slide_id", slide.ID).
			Int("attempts", len(attempts)).
			Msg("All media providers failed for slide")
		asset = &models.MediaAsset{Provider: models.ProviderNone}
	}
	slide.ImageAsset = asset
	slide.ChartAsset = nil
}
