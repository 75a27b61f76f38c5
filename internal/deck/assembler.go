package deck

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

// Assemble composes the final deck. It performs no validation of its own:
// upstream invariants are trusted. Missing slide IDs are assigned from the
// sequence index plus a timestamp, and generation metadata is stamped.
func Assemble(d *Draft, model string) *models.Deck {
	now := time.Now().UTC()

	hasCharts := false
	hasImages := false
	for i, slide := range d.Slides {
		if slide.ID == "" {
			slide.ID = fmt.Sprintf("slide-%d-%d", i+1, now.UnixNano())
		}
		if !slide.ChartAsset.Empty() {
			hasCharts = true
		}
		if !slide.ImageAsset.Empty() {
			hasImages = true
		}
	}

	deck := &models.Deck{
		ID:          uuid.New(),
		Title:       d.Title,
		Description: d.Description,
		Theme:       d.Theme,
		Slides:      d.Slides,
		Metadata: models.DeckMetadata{
			TotalSlides: len(d.Slides),
			HasCharts:   hasCharts,
			HasImages:   hasImages,
			GeneratedAt: now,
			Model:       model,
			Theme:       d.Theme,
		},
	}

	log.Info().
		Str("deck_id", deck.ID.String()).
		Int("slides", deck.Metadata.TotalSlides).
		Bool("has_charts", hasCharts).
		Bool("has_images", hasImages).
		Msg("Deck assembled")
	return deck
}
