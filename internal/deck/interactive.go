package deck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

const (
	maxToggles     = 3
	maxNestedCards = 3
)

var (
	qaWords         = []string{"question", "q&a", "faq", "ask"}
	chronologyWords = []string{"timeline", "history", "chronology", "sequence"}
	detailWords     = []string{"detail", "more info", "expand", "additional"}

	reYearPrefix = regexp.MustCompile(`^(19|20)\d{2}`)
)

// EnrichDraft runs the interactivity pass over every slide of a draft.
func EnrichDraft(d *Draft) {
	enriched := 0
	for _, slide := range d.Slides {
		if EnrichInteractivity(slide) {
			enriched++
		}
	}
	if enriched > 0 {
		log.Debug().
			Int("slides", len(d.Slides)).
			Int("enriched", enriched).
			Msg("Interactive enrichment complete")
	}
}

// EnrichInteractivity adds interactive elements to a slide based on its text:
// question lines become toggles, comparison and chronology slides get nested
// cards, detail-heavy slides get expandable sections. Slides already carrying
// interactive elements are left alone. Reports whether anything was added.
func EnrichInteractivity(slide *models.Slide) bool {
	if len(slide.Toggles) > 0 || len(slide.NestedCards) > 0 {
		return false
	}

	text := strings.ToLower(slide.Title + " " + slide.Content)
	switch {
	case containsAny(text, qaWords):
		return addQAToggles(slide)
	case slide.Type == models.SlideTypeComparison || containsAny(text, comparisonWords):
		return addComparisonCards(slide)
	case slide.Type == models.SlideTypeTimeline || containsAny(text, chronologyWords):
		return addTimelineCards(slide)
	case containsAny(text, detailWords):
		return addDetailToggles(slide)
	}
	return false
}

// addQAToggles turns question lines into collapsed toggles.
func addQAToggles(slide *models.Slide) bool {
	var questions []string
	for _, line := range splitLines(slide.Content) {
		line = strings.TrimSpace(strings.TrimLeft(line, "•-* "))
		if strings.HasSuffix(line, "?") || strings.HasPrefix(line, "Q:") {
			questions = append(questions, line)
		}
	}
	if len(questions) == 0 {
		return false
	}
	if len(questions) > maxToggles {
		questions = questions[:maxToggles]
	}
	for i, q := range questions {
		slide.Toggles = append(slide.Toggles, models.Toggle{
			ID:      uuid.New().String(),
			Title:   q,
			Content: fmt.Sprintf("Answer to question %d.", i+1),
		})
	}
	slide.Layout = "qa"
	return true
}

// addComparisonCards splits the slide's bullets into side-by-side cards.
func addComparisonCards(slide *models.Slide) bool {
	bullets := bulletLines(slide.Content)
	if len(bullets) < 2 {
		return false
	}
	if len(bullets) > maxNestedCards {
		bullets = bullets[:maxNestedCards]
	}
	for i, b := range bullets {
		slide.NestedCards = append(slide.NestedCards, models.NestedCard{
			ID:      uuid.New().String(),
			Title:   fmt.Sprintf("Option %c", 'A'+i),
			Content: b,
			Layout:  "content",
		})
	}
	slide.Layout = "two-column"
	return true
}

// addTimelineCards turns bullets into event cards, titled by a leading year
// when one is present.
func addTimelineCards(slide *models.Slide) bool {
	bullets := bulletLines(slide.Content)
	if len(bullets) < 2 {
		return false
	}
	if len(bullets) > maxNestedCards {
		bullets = bullets[:maxNestedCards]
	}
	for i, b := range bullets {
		title := fmt.Sprintf("Milestone %d", i+1)
		if year := reYearPrefix.FindString(b); year != "" {
			title = year
		}
		slide.NestedCards = append(slide.NestedCards, models.NestedCard{
			ID:      uuid.New().String(),
			Title:   title,
			Content: b,
			Layout:  "content",
		})
	}
	slide.Layout = "timeline"
	return true
}

// addDetailToggles adds the standard expandable sections for detail-heavy slides.
func addDetailToggles(slide *models.Slide) bool {
	slide.Toggles = append(slide.Toggles,
		models.Toggle{
			ID:      uuid.New().String(),
			Title:   "More Details",
			Content: "Additional information about this topic.",
		},
		models.Toggle{
			ID:      uuid.New().String(),
			Title:   "Examples",
			Content: "Real-world examples and use cases.",
		},
	)
	return true
}

// bulletLines returns the bullet lines of content, markers stripped.
func bulletLines(content string) []string {
	var out []string
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			out = append(out, strings.TrimSpace(strings.TrimLeft(trimmed, "•-* ")))
		}
	}
	return out
}
