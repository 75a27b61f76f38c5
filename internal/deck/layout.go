package deck

import (
	"strings"

	"github.com/snappy-loop/decks/internal/models"
	"github.com/snappy-loop/decks/internal/themes"
)

// Height formula constants. Downstream rendering sizes slide canvases from
// the computed height without a second content-measurement pass.
const (
	baseHeight      = 800
	maxHeight       = 1400
	perBulletHeight = 40
	perTextBlock    = 200 // characters per height increment
	textBlockHeight = 60
	chartBonus      = 150
)

// ApplyTheme merges the theme palette into every slide, fills in missing
// layouts, and computes the content-driven slide height.
func ApplyTheme(d *Draft, theme themes.Theme) {
	colors := theme.Colors()
	d.Theme = strings.ToLower(theme.Name)
	for _, slide := range d.Slides {
		slide.Colors = colors
		if slide.Layout == "" {
			slide.Layout = themes.LayoutFor(slide.Type)
		}
		slide.ImagePrompt = theme.StylePrompt(slide.ImagePrompt)
		slide.Height = slideHeight(slide)
	}
}

// LayoutSlide resets a single slide's layout to the default for its type and
// recomputes its height. Used by standalone slide enhancement.
func LayoutSlide(slide *models.Slide) {
	slide.Layout = themes.LayoutFor(slide.Type)
	slide.Height = slideHeight(slide)
}

// slideHeight computes base height plus per-bullet and per-text increments
// plus a chart bonus, clamped to [baseHeight, maxHeight].
func slideHeight(slide *models.Slide) int {
	h := baseHeight
	h += perBulletHeight * bulletCount(slide.Content)
	h += textBlockHeight * (len(slide.Content) / perTextBlock)
	if slide.ChartSpec != nil && slide.ChartSpec.Needed {
		h += chartBonus
	}
	if h > maxHeight {
		return maxHeight
	}
	return h
}

func bulletCount(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
