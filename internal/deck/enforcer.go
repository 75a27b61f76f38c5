package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

// Deck count invariants: every successful generation yields 8 to 15 slides.
const (
	MinSlides = 8
	MaxSlides = 15
)

const (
	maxBullets    = 6
	minTitleLen   = 5
	minContentLen = 20
	bulletMarker  = "• "
)

// ErrNoSlideArray is the one hard schema failure: the parsed response has no
// top-level "slides" or "sections" array. Everything else self-heals.
var ErrNoSlideArray = errors.New(`model response has no "slides" or "sections" array`)

// Draft is the schema-enforced intermediate deck, before enhancement and
// media resolution.
type Draft struct {
	Title       string
	Description string
	Theme       string
	Slides      []*models.Slide
}

// EnforceSchema validates a parsed candidate object against the deck shape.
// Noise entries are dropped, the count is healed into [MinSlides, MaxSlides],
// and bullet formatting is normalized. Idempotent on its own output.
func EnforceSchema(obj map[string]any) (*Draft, error) {
	arr, ok := slideArray(obj)
	if !ok {
		return nil, ErrNoSlideArray
	}

	draft := &Draft{
		Title:       getString(obj, "title"),
		Description: getString(obj, "description"),
		Theme:       getString(obj, "theme"),
	}

	dropped := 0
	for _, entry := range arr {
		m, ok := entry.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		slide := parseSlide(m)
		if len(strings.TrimSpace(slide.Title)) < minTitleLen || len(strings.TrimSpace(slide.Content)) < minContentLen {
			dropped++
			continue
		}
		slide.Content = NormalizeBullets(slide.Content)
		draft.Slides = append(draft.Slides, slide)
	}

	padded := 0
	for len(draft.Slides) < MinSlides {
		draft.Slides = append(draft.Slides, fillerSlide(len(draft.Slides)+1))
		padded++
	}
	truncated := 0
	if len(draft.Slides) > MaxSlides {
		truncated = len(draft.Slides) - MaxSlides
		draft.Slides = draft.Slides[:MaxSlides]
	}

	if dropped > 0 || padded > 0 || truncated > 0 {
		log.Info().
			Int("dropped", dropped).
			Int("padded", padded).
			Int("truncated", truncated).
			Int("final", len(draft.Slides)).
			Msg("Schema enforcement healed slide set")
	}
	return draft, nil
}

// slideArray returns the top-level slide-shaped array, accepting either key.
func slideArray(obj map[string]any) ([]any, bool) {
	for _, key := range []string{"slides", "sections"} {
		if arr, ok := obj[key].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

func parseSlide(m map[string]any) *models.Slide {
	slideType := strings.ToLower(strings.TrimSpace(getString(m, "type")))
	if slideType == "" {
		slideType = models.SlideTypeContent
	}

	content := getString(m, "content")
	if content == "" {
		// Outline sections carry bullets instead of prose content.
		if bullets := toStringSlice(m["bullets"]); len(bullets) > 0 {
			content = bulletMarker + strings.Join(bullets, "\n"+bulletMarker)
		}
	}

	return &models.Slide{
		Type:        slideType,
		Title:       getString(m, "title"),
		Content:     content,
		Layout:      getString(m, "layout"),
		ImagePrompt: getString(m, "imagePrompt", "image_prompt"),
		ChartSpec:   parseChartSpec(m),
	}
}

func parseChartSpec(m map[string]any) *models.ChartSpec {
	var cm map[string]any
	for _, key := range []string{"chart", "chartSpec", "chart_spec"} {
		if v, ok := m[key].(map[string]any); ok {
			cm = v
			break
		}
	}
	if cm == nil {
		return nil
	}
	needed, _ := cm["needed"].(bool)
	return &models.ChartSpec{
		Needed:      needed,
		Type:        strings.ToLower(strings.TrimSpace(getString(cm, "type"))),
		Title:       getString(cm, "title"),
		Labels:      toStringSlice(cm["labels"]),
		Values:      toFloatSlice(cm["values"]),
		Description: getString(cm, "description"),
	}
}

// NormalizeBullets ensures content is bullet-formatted: content lacking a
// marker is split on newlines (or sentences, for a single line) and re-joined
// with a uniform marker. At most maxBullets lines are kept.
func NormalizeBullets(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return content
	}

	if hasBulletMarker(content) {
		lines := strings.Split(content, "\n")
		if len(lines) <= maxBullets {
			return content
		}
		return strings.Join(lines[:maxBullets], "\n")
	}

	parts := splitLines(content)
	if len(parts) == 1 {
		parts = splitSentences(content)
	}
	if len(parts) > maxBullets {
		parts = parts[:maxBullets]
	}
	for i, p := range parts {
		parts[i] = bulletMarker + p
	}
	return strings.Join(parts, "\n")
}

func hasBulletMarker(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			return true
		}
	}
	return false
}

func splitLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitSentences(content string) []string {
	var out []string
	var b strings.Builder
	for _, r := range content {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	if len(out) == 0 {
		out = []string{content}
	}
	return out
}

// fillerSlide synthesizes a generic slide used to pad a short deck.
func fillerSlide(n int) *models.Slide {
	return &models.Slide{
		Type:  models.SlideTypeContent,
		Title: "Key Point " + strconv.Itoa(n),
		Content: bulletMarker + "Core idea and why it matters\n" +
			bulletMarker + "Supporting details and context\n" +
			bulletMarker + "What to take away from this point",
	}
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return ""
}

func toStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprintf("%v", t))
		}
	}
	return out
}

func toFloatSlice(v any) []float64 {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, item := range arr {
		switch t := item.(type) {
		case float64:
			out = append(out, t)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out
}
