package deck

import (
	"strings"
	"unicode"

	"github.com/snappy-loop/decks/internal/models"
)

// SynthesizedDraft builds a complete draft without any model output. Used
// when the model call or response parsing fails entirely; the result still
// honors the slide-count invariant after schema enforcement semantics.
func SynthesizedDraft(topic string) *Draft {
	title := TitleFromTopic(topic)
	lower := strings.ToLower(topic)

	slides := []*models.Slide{
		{
			Type:    models.SlideTypeTitle,
			Title:   title,
			Content: bulletMarker + "A presentation about " + lower,
		},
		{
			Type:  models.SlideTypeHook,
			Title: "Why " + title + " Matters",
			Content: bulletMarker + "The key questions this topic raises\n" +
				bulletMarker + "Who is affected and how\n" +
				bulletMarker + "What changes once you understand it",
		},
		{
			Type:  models.SlideTypeContent,
			Title: title + ": The Basics",
			Content: bulletMarker + "Understanding the fundamentals\n" +
				bulletMarker + "Important considerations\n" +
				bulletMarker + "Common misconceptions",
		},
		{
			Type:  models.SlideTypeStats,
			Title: title + " by the Numbers",
			Content: bulletMarker + "Key measurements and indicators\n" +
				bulletMarker + "How the figures compare\n" +
				bulletMarker + "What the data suggests",
		},
		{
			Type:  models.SlideTypeContent,
			Title: "Best Practices",
			Content: bulletMarker + "Proven approaches that work\n" +
				bulletMarker + "Pitfalls to avoid\n" +
				bulletMarker + "How to get started",
		},
		{
			Type:  models.SlideTypeTimeline,
			Title: "How " + title + " Evolved",
			Content: bulletMarker + "Early developments\n" +
				bulletMarker + "Recent milestones\n" +
				bulletMarker + "Where things stand today",
		},
		{
			Type:  models.SlideTypeContent,
			Title: "Future Outlook",
			Content: bulletMarker + "Emerging directions\n" +
				bulletMarker + "Open challenges\n" +
				bulletMarker + "Opportunities ahead",
		},
		{
			Type:  models.SlideTypeConclusion,
			Title: "Key Takeaways",
			Content: bulletMarker + "What we covered about " + lower + "\n" +
				bulletMarker + "The most important insights\n" +
				bulletMarker + "Questions?",
		},
	}

	return &Draft{
		Title:       title,
		Description: topic,
		Slides:      slides,
	}
}

// TitleFromTopic extracts a clean, capitalized title from a free-text topic.
func TitleFromTopic(topic string) string {
	words := strings.Fields(topic)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	title := strings.Join(words, " ")
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	title = strings.TrimSpace(truncateGraphemes(b.String(), 50))
	if title == "" {
		title = "Untitled Presentation"
	}
	return title
}
