package deck

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/rivo/uniseg"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

const (
	maxContentLen     = 600
	condensedBullets  = 5
	maxTitleGraphemes = 80
)

// Synthesized chart values stay inside an illustrative band so fallback
// charts never assert figures beyond placeholder ranges.
const (
	placeholderMin = 40
	placeholderMax = 95
)

// vague words that mark a title as generic and worth rewriting.
var genericTitleWords = []string{
	"overview", "introduction", "background", "section", "summary",
	"untitled", "slide", "topic", "agenda", "miscellaneous",
}

var (
	trendWords        = []string{"growth", "trend", "increase", "decrease", "over time", "trajectory", "forecast", "decline", "progress", "evolution"}
	comparisonWords   = []string{"versus", " vs ", "vs.", "compare", "comparison", "difference", "benchmark", "against"}
	distributionWords = []string{"share", "distribution", "percentage", "proportion", "breakdown", "split", "composition"}
)

// Enhancer rewrites weak titles, condenses overlong content, and synthesizes
// chart specs where warranted. rng is injected so synthesized placeholder
// values are reproducible in tests; mu serializes it across requests.
type Enhancer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEnhancer creates an enhancer backed by the given random source.
func NewEnhancer(rng *rand.Rand) *Enhancer {
	return &Enhancer{rng: rng}
}

// Enhance runs per-slide content enhancement over a schema-enforced draft.
func (e *Enhancer) Enhance(d *Draft, topic, audience string) {
	if topic == "" {
		topic = d.Title
	}
	for _, slide := range d.Slides {
		if isGenericTitle(slide.Title) {
			rewritten := e.rewriteTitle(slide.Type, topic, audience)
			log.Debug().
				Str("old", slide.Title).
				Str("new", rewritten).
				Msg("Rewrote generic slide title")
			slide.Title = rewritten
		}
		slide.Title = truncateGraphemes(slide.Title, maxTitleGraphemes)

		e.ensureChartSpec(slide)

		if len(slide.Content) > maxContentLen {
			slide.Content = condenseContent(slide.Content)
		}

		if slide.ImagePrompt == "" {
			slide.ImagePrompt = fmt.Sprintf(
				"Create a presentation-ready visual for: %s. %s. Clean, modern, professional, high-contrast.",
				slide.Title, firstBullet(slide.Content))
		}
	}
}

// isGenericTitle reports whether a title should be rewritten: it contains a
// deny-listed vague word or is under five graphemes.
func isGenericTitle(title string) bool {
	if uniseg.GraphemeClusterCount(strings.TrimSpace(title)) < minTitleLen {
		return true
	}
	lower := strings.ToLower(title)
	for _, w := range genericTitleWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (e *Enhancer) rewriteTitle(slideType, topic, audience string) string {
	var title string
	switch slideType {
	case models.SlideTypeTitle:
		title = fmt.Sprintf("%s: What You Need to Know", topic)
	case models.SlideTypeHook:
		title = fmt.Sprintf("Why %s Matters Now", topic)
	case models.SlideTypeStats:
		title = fmt.Sprintf("%s by the Numbers", topic)
	case models.SlideTypeConclusion:
		title = fmt.Sprintf("Where %s Goes From Here", topic)
	default:
		title = fmt.Sprintf("%s: Key Insights", topic)
	}
	if audience != "" {
		title += " for " + audience
	}
	return title
}

// ensureChartSpec replaces an invalid requested spec with a synthesized one
// and infers a chart where the slide text warrants one but none was given.
func (e *Enhancer) ensureChartSpec(slide *models.Slide) {
	spec := slide.ChartSpec
	if spec != nil && spec.Needed {
		if spec.Valid() {
			return
		}
		replacement := e.synthesizeSpec(chartTypeForSlide(slide.Type), slide.Title)
		log.Debug().
			Str("slide_title", slide.Title).
			Str("chart_type", replacement.Type).
			Int("labels", len(spec.Labels)).
			Int("values", len(spec.Values)).
			Msg("Replaced invalid chart spec with synthesized fallback")
		slide.ChartSpec = replacement
		return
	}

	text := strings.ToLower(slide.Title + " " + slide.Content)
	switch {
	case containsAny(text, trendWords):
		slide.ChartSpec = e.synthesizeSpec(models.ChartTypeLine, slide.Title)
	case containsAny(text, comparisonWords):
		slide.ChartSpec = e.synthesizeSpec(models.ChartTypeBar, slide.Title)
	case containsAny(text, distributionWords):
		slide.ChartSpec = e.synthesizeSpec(models.ChartTypePie, slide.Title)
	case slide.Type == models.SlideTypeStats:
		slide.ChartSpec = e.synthesizeSpec(models.ChartTypeBar, slide.Title)
	}
}

// chartTypeForSlide maps a slide type to the fallback chart shape.
func chartTypeForSlide(slideType string) string {
	switch slideType {
	case models.SlideTypeStats:
		return models.ChartTypeBar
	case models.SlideTypeTimeline:
		return models.ChartTypeLine
	case models.SlideTypeComparison:
		return models.ChartTypePie
	default:
		return models.ChartTypeBar
	}
}

// synthesizeSpec builds a valid placeholder spec of the given type. Values
// are bounded random placeholders, not claims of real data.
func (e *Enhancer) synthesizeSpec(chartType, title string) *models.ChartSpec {
	var labels []string
	switch chartType {
	case models.ChartTypeLine:
		labels = []string{"Q1", "Q2", "Q3", "Q4"}
	case models.ChartTypePie:
		labels = []string{"Segment A", "Segment B", "Segment C", "Other"}
	default:
		labels = []string{"Metric A", "Metric B", "Metric C", "Metric D"}
	}
	values := make([]float64, len(labels))
	e.mu.Lock()
	for i := range values {
		values[i] = math.Round(placeholderMin + e.rng.Float64()*(placeholderMax-placeholderMin))
	}
	e.mu.Unlock()
	return &models.ChartSpec{
		Needed:      true,
		Type:        chartType,
		Title:       title,
		Labels:      labels,
		Values:      values,
		Description: "Illustrative values",
	}
}

// condenseContent reduces overlong content to at most condensedBullets bullet
// lines, dropping non-bullet lines first.
func condenseContent(content string) string {
	var bullets, other []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			bullets = append(bullets, trimmed)
		} else {
			other = append(other, trimmed)
		}
	}
	kept := bullets
	if len(kept) == 0 {
		kept = other
	}
	if len(kept) > condensedBullets {
		kept = kept[:condensedBullets]
	}
	return strings.Join(kept, "\n")
}

func firstBullet(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•-* "))
		if line != "" {
			return line
		}
	}
	return content
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// truncateGraphemes cuts s to at most n grapheme clusters.
func truncateGraphemes(s string, n int) string {
	if uniseg.GraphemeClusterCount(s) <= n {
		return s
	}
	g := uniseg.NewGraphemes(s)
	var b strings.Builder
	count := 0
	for g.Next() && count < n {
		b.WriteString(g.Str())
		count++
	}
	return b.String()
}
