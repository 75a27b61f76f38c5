package media

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

// ErrUnavailable marks a provider that is temporarily unable to serve, e.g.
// a hosted model that is still loading. The chain advances without logging
// it as a hard failure.
var ErrUnavailable = errors.New("provider temporarily unavailable")

// Provider produces a single media asset for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (*models.MediaAsset, error)
}

// Attempt records one provider call for diagnostics.
type Attempt struct {
	Provider string
	Outcome  string
	Latency  time.Duration
}

// Chain tries providers in order and keeps the first asset produced.
type Chain struct {
	providers []Provider
	timeout   time.Duration
}

// NewChain builds a chain with a per-attempt timeout. Providers run strictly
// in the order given; a terminal provider that cannot fail should go last.
func NewChain(timeout time.Duration, providers ...Provider) *Chain {
	return &Chain{providers: providers, timeout: timeout}
}

// Resolve walks the chain until a provider returns an asset. The attempt log
// covers every call made, including the winning one. The last provider is
// treated as terminal: it runs even after the slide deadline has consumed the
// rest of the chain, so a chain ending in a provider that cannot fail always
// yields an asset.
func (c *Chain) Resolve(ctx context.Context, prompt string) (*models.MediaAsset, []Attempt) {
	attempts := make([]Attempt, 0, len(c.providers))

	for i, p := range c.providers {
		terminal := i == len(c.providers)-1
		if ctx.Err() != nil && !terminal {
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: "skipped"})
			continue
		}

		attemptBase := ctx
		if terminal {
			attemptBase = context.WithoutCancel(ctx)
		}
		attemptCtx, cancel := context.WithTimeout(attemptBase, c.timeout)
		start := time.Now()
		asset, err := p.Generate(attemptCtx, prompt)
		cancel()
		latency := time.Since(start)

		switch {
		case err == nil && asset != nil && !asset.Empty():
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: "ok", Latency: latency})
			return asset, attempts
		case errors.Is(err, ErrUnavailable):
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: "unavailable", Latency: latency})
		case errors.Is(err, context.DeadlineExceeded):
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: "timeout", Latency: latency})
		default:
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: "error", Latency: latency})
			if err != nil {
				log.Warn().Err(err).Str("provider", p.Name()).Msg("Media provider failed")
			}
		}
	}

	return nil, attempts
}
