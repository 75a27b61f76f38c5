package deck

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func sectionEntry(title, content string) map[string]any {
	return map[string]any{"title": title, "content": content}
}

func validEntries(n int) []any {
	entries := make([]any, n)
	for i := 0; i < n; i++ {
		entries[i] = sectionEntry(
			fmt.Sprintf("Section Number %d", i+1),
			fmt.Sprintf("• Point one of section %d\n• Point two with enough detail", i+1),
		)
	}
	return entries
}

func TestEnforceSchema_MissingArray(t *testing.T) {
	_, err := EnforceSchema(map[string]any{"title": "No slides here"})
	if !errors.Is(err, ErrNoSlideArray) {
		t.Fatalf("expected ErrNoSlideArray, got %v", err)
	}
}

func TestEnforceSchema_PadsShortDeck(t *testing.T) {
	// 5 valid sections: 3 synthesized fillers are appended to reach 8.
	draft, err := EnforceSchema(map[string]any{"title": "T", "sections": validEntries(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Slides) != MinSlides {
		t.Fatalf("slides = %d, want %d", len(draft.Slides), MinSlides)
	}
	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("Section Number %d", i+1)
		if draft.Slides[i].Title != want {
			t.Errorf("slide %d title = %q, want %q (original order must be stable)", i, draft.Slides[i].Title, want)
		}
	}
	for i := 5; i < 8; i++ {
		want := fmt.Sprintf("Key Point %d", i+1)
		if draft.Slides[i].Title != want {
			t.Errorf("filler %d title = %q, want %q", i, draft.Slides[i].Title, want)
		}
	}
}

func TestEnforceSchema_TruncatesLongDeck(t *testing.T) {
	draft, err := EnforceSchema(map[string]any{"title": "T", "slides": validEntries(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Slides) != MaxSlides {
		t.Fatalf("slides = %d, want %d", len(draft.Slides), MaxSlides)
	}
	for i, slide := range draft.Slides {
		want := fmt.Sprintf("Section Number %d", i+1)
		if slide.Title != want {
			t.Errorf("slide %d title = %q, want %q", i, slide.Title, want)
		}
	}
}

func TestEnforceSchema_DropsNoise(t *testing.T) {
	entries := []any{
		sectionEntry("Ok", "long enough content to keep around"), // title too short
		sectionEntry("A Proper Title", "tiny"),                   // content too short
		"not even an object",
		sectionEntry("A Kept Slide Title", "• This one has plenty of content to stay in"),
	}
	draft, err := EnforceSchema(map[string]any{"slides": entries})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 survivor + 7 fillers.
	if len(draft.Slides) != MinSlides {
		t.Fatalf("slides = %d, want %d", len(draft.Slides), MinSlides)
	}
	if draft.Slides[0].Title != "A Kept Slide Title" {
		t.Errorf("first slide = %q, want the surviving entry", draft.Slides[0].Title)
	}
}

func TestEnforceSchema_Idempotent(t *testing.T) {
	draft, err := EnforceSchema(map[string]any{"title": "T", "sections": validEntries(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-run the enforcer on its own output: no further healing may occur.
	entries := make([]any, len(draft.Slides))
	for i, s := range draft.Slides {
		entries[i] = map[string]any{"type": s.Type, "title": s.Title, "content": s.Content}
	}
	again, err := EnforceSchema(map[string]any{"title": draft.Title, "slides": entries})
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if len(again.Slides) != len(draft.Slides) {
		t.Fatalf("second pass slide count = %d, want %d", len(again.Slides), len(draft.Slides))
	}
	for i := range draft.Slides {
		if again.Slides[i].Title != draft.Slides[i].Title || again.Slides[i].Content != draft.Slides[i].Content {
			t.Errorf("slide %d changed on second pass:\nfirst:  %q / %q\nsecond: %q / %q",
				i, draft.Slides[i].Title, draft.Slides[i].Content, again.Slides[i].Title, again.Slides[i].Content)
		}
	}
}

func TestEnforceSchema_ParsesChartSpec(t *testing.T) {
	entry := map[string]any{
		"title":   "Revenue Growth Outlook",
		"content": "• Revenue grew steadily across all quarters",
		"chart": map[string]any{
			"needed": true,
			"type":   "LINE",
			"labels": []any{"Q1", "Q2"},
			"values": []any{10.0, "20"},
		},
	}
	draft, err := EnforceSchema(map[string]any{"slides": []any{entry}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spec := draft.Slides[0].ChartSpec
	if spec == nil || !spec.Needed {
		t.Fatal("expected a needed chart spec")
	}
	if spec.Type != "line" {
		t.Errorf("type = %q, want line (lowercased)", spec.Type)
	}
	if !reflect.DeepEqual(spec.Values, []float64{10, 20}) {
		t.Errorf("values = %v, want [10 20]", spec.Values)
	}
}

func TestEnforceSchema_OutlineBullets(t *testing.T) {
	entry := map[string]any{
		"title":   "From Outline Section",
		"bullets": []any{"first point", "second point", "third point"},
	}
	draft, err := EnforceSchema(map[string]any{"sections": []any{entry}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := draft.Slides[0].Content
	if !strings.HasPrefix(content, "• first point") {
		t.Errorf("bullets not joined into content: %q", content)
	}
	if strings.Count(content, "•") != 3 {
		t.Errorf("expected 3 bullets, got %q", content)
	}
}

func TestNormalizeBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"already bulleted",
			"• one\n• two",
			"• one\n• two",
		},
		{
			"newline separated",
			"First line here\nSecond line here",
			"• First line here\n• Second line here",
		},
		{
			"single line sentences",
			"First sentence. Second sentence.",
			"• First sentence.\n• Second sentence.",
		},
		{
			"caps at six",
			"a\nb\nc\nd\ne\nf\ng\nh",
			"• a\n• b\n• c\n• d\n• e\n• f",
		},
		{
			"dash bullets kept",
			"- one\n- two",
			"- one\n- two",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBullets(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeBullets(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleFromTopic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "machine learning", "Machine Learning"},
		{"strips punctuation", "what is AI?!", "What Is AI"},
		{"empty", "", "Untitled Presentation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromTopic(tt.in); got != tt.want {
				t.Errorf("TitleFromTopic(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSynthesizedDraft_MeetsCountInvariant(t *testing.T) {
	d := SynthesizedDraft("quantum computing")
	if len(d.Slides) < MinSlides || len(d.Slides) > MaxSlides {
		t.Fatalf("synthesized draft has %d slides, want within [%d, %d]", len(d.Slides), MinSlides, MaxSlides)
	}
	for i, s := range d.Slides {
		if len(strings.TrimSpace(s.Title)) < minTitleLen {
			t.Errorf("slide %d title too short: %q", i, s.Title)
		}
		if len(strings.TrimSpace(s.Content)) < minContentLen {
			t.Errorf("slide %d content too short: %q", i, s.Content)
		}
	}
}
