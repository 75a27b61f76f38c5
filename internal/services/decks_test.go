package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/snappy-loop/decks/internal/deck"
	"github.com/snappy-loop/decks/internal/events"
	"github.com/snappy-loop/decks/internal/models"
	"github.com/snappy-loop/decks/internal/themes"
)

type fakeModelClient struct {
	deckObj    map[string]any
	deckErr    error
	outline    *models.Outline
	outlineErr error
	gotModel   string
	gotTopic   string
}

func (f *fakeModelClient) DefaultModel() string { return "default/model:free" }

func (f *fakeModelClient) ListModels() []models.ModelInfo {
	return []models.ModelInfo{{ID: "default/model:free", Name: "Default"}}
}

func (f *fakeModelClient) GenerateDeckContent(_ context.Context, topic, _, model string) (map[string]any, error) {
	f.gotTopic = topic
	f.gotModel = model
	return f.deckObj, f.deckErr
}

func (f *fakeModelClient) GenerateOutline(_ context.Context, _ string) (*models.Outline, error) {
	return f.outline, f.outlineErr
}

func (f *fakeModelClient) GenerateDeckFromOutline(_ context.Context, _ *models.Outline, _, _ string) (map[string]any, error) {
	return f.deckObj, f.deckErr
}

type fakeResolver struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeResolver) ResolveSlide(_ context.Context, slide *models.Slide) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	slide.ImageAsset = &models.MediaAsset{Provider: models.ProviderURL, Payload: "https://img.example.com/x"}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.DeckEvent
}

func (f *fakePublisher) PublishDeckEvent(_ context.Context, e events.DeckEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func newTestService(client *fakeModelClient, resolver *fakeResolver, publisher EventPublisher) *DeckService {
	rng := rand.New(rand.NewSource(1))
	return NewDeckService(client, resolver, themes.NewCatalog(rng), deck.NewEnhancer(rng), publisher, 2)
}

func modelResponse(slideCount int) map[string]any {
	slides := make([]any, 0, slideCount)
	for i := 0; i < slideCount; i++ {
		slides = append(slides, map[string]any{
			"type":    "content",
			"title":   "A Substantial Slide Title",
			"content": "• first point with enough words\n• second point with enough words",
		})
	}
	return map[string]any{
		"title":       "Fusion Power Explained",
		"description": "A walkthrough of fusion energy",
		"slides":      slides,
	}
}

func TestGenerateDeck_FullPipeline(t *testing.T) {
	client := &fakeModelClient{deckObj: modelResponse(10)}
	resolver := &fakeResolver{}
	publisher := &fakePublisher{}
	svc := newTestService(client, resolver, publisher)

	d, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{
		Topic: "fusion power", Audience: "engineers", Theme: "dark",
	})
	if err != nil {
		t.Fatalf("GenerateDeck: %v", err)
	}

	if got := len(d.Slides); got < deck.MinSlides || got > deck.MaxSlides {
		t.Errorf("slide count = %d, want within [%d, %d]", got, deck.MinSlides, deck.MaxSlides)
	}
	if d.Theme != "dark" {
		t.Errorf("theme = %q, want dark", d.Theme)
	}
	if d.Metadata.TotalSlides != len(d.Slides) {
		t.Errorf("metadata.totalSlides = %d, want %d", d.Metadata.TotalSlides, len(d.Slides))
	}
	if d.Metadata.Model != "default/model:free" {
		t.Errorf("metadata.model = %q", d.Metadata.Model)
	}
	if resolver.calls != len(d.Slides) {
		t.Errorf("resolver called %d times for %d slides", resolver.calls, len(d.Slides))
	}
	for i, s := range d.Slides {
		if s.ID == "" {
			t.Errorf("slide %d has no id", i)
		}
		if s.Height < 800 || s.Height > 1400 {
			t.Errorf("slide %d height = %d, want within [800, 1400]", i, s.Height)
		}
	}

	if len(publisher.events) != 1 || publisher.events[0].Event != events.EventDeckGenerated {
		t.Errorf("published events = %+v, want one deck.generated", publisher.events)
	}
}

func TestGenerateDeck_ExplicitModelOverridesDefault(t *testing.T) {
	client := &fakeModelClient{deckObj: modelResponse(8)}
	svc := newTestService(client, &fakeResolver{}, nil)

	_, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{
		Topic: "fusion power", Model: "other/model:free",
	})
	if err != nil {
		t.Fatalf("GenerateDeck: %v", err)
	}
	if client.gotModel != "other/model:free" {
		t.Errorf("model passed to client = %q", client.gotModel)
	}
}

func TestGenerateDeck_ModelFailureSynthesizesDeck(t *testing.T) {
	client := &fakeModelClient{deckErr: errors.New("upstream 500")}
	svc := newTestService(client, &fakeResolver{}, nil)

	d, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{Topic: "quantum computing"})
	if err != nil {
		t.Fatalf("expected synthesized deck, got error: %v", err)
	}
	if len(d.Slides) < deck.MinSlides {
		t.Errorf("synthesized deck has %d slides, want >= %d", len(d.Slides), deck.MinSlides)
	}
	if d.Title == "" {
		t.Error("synthesized deck has empty title")
	}
}

func TestGenerateDeck_NoSlideArraySurfaces(t *testing.T) {
	client := &fakeModelClient{deckObj: map[string]any{"title": "No Slides Here"}}
	publisher := &fakePublisher{}
	svc := newTestService(client, &fakeResolver{}, publisher)

	_, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{Topic: "anything"})
	if !errors.Is(err, deck.ErrNoSlideArray) {
		t.Fatalf("err = %v, want ErrNoSlideArray", err)
	}
	if len(publisher.events) != 1 || publisher.events[0].Event != events.EventDeckFailed {
		t.Errorf("published events = %+v, want one deck.failed", publisher.events)
	}
}

func TestGenerateDeck_UnknownThemeStillProducesDeck(t *testing.T) {
	client := &fakeModelClient{deckObj: modelResponse(8)}
	svc := newTestService(client, &fakeResolver{}, nil)

	d, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{
		Topic: "fusion power", Theme: "no-such-theme",
	})
	if err != nil {
		t.Fatalf("GenerateDeck: %v", err)
	}
	if d.Theme == "" {
		t.Error("deck has no theme despite catalog fallback")
	}
	for i, s := range d.Slides {
		if s.Colors.Primary == "" {
			t.Errorf("slide %d missing theme colors", i)
		}
	}
}

func TestDeckFromOutline_UsesOutlineTitle(t *testing.T) {
	obj := modelResponse(8)
	delete(obj, "title")
	client := &fakeModelClient{deckObj: obj}
	svc := newTestService(client, &fakeResolver{}, nil)

	d, err := svc.DeckFromOutline(context.Background(), &models.DeckFromOutlineRequest{
		Outline: models.Outline{
			Title: "Grid Storage Outline",
			Sections: []models.OutlineSection{
				{Title: "Why It Matters", Bullets: []string{"demand peaks", "renewables"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("DeckFromOutline: %v", err)
	}
	if d.Title != "Grid Storage Outline" {
		t.Errorf("deck title = %q, want outline title", d.Title)
	}
}

func TestGenerateOutline_WrapsClientError(t *testing.T) {
	client := &fakeModelClient{outlineErr: errors.New("model timeout")}
	svc := newTestService(client, &fakeResolver{}, nil)

	_, err := svc.GenerateOutline(context.Background(), &models.OutlineRequest{Content: "long document text"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestListModels_Passthrough(t *testing.T) {
	client := &fakeModelClient{}
	svc := newTestService(client, &fakeResolver{}, nil)

	list := svc.ListModels()
	if len(list) != 1 || list[0].ID != "default/model:free" {
		t.Errorf("ListModels = %+v", list)
	}
}

func timelineResponse() map[string]any {
	obj := modelResponse(9)
	obj["slides"] = append(obj["slides"].([]any), map[string]any{
		"type":    "timeline",
		"title":   "Road to Commercial Fusion",
		"content": "• 2022 net energy gain at NIF\n• 2025 pilot plant designs funded\n• First grid-connected plant",
	})
	return obj
}

func TestGenerateDeck_InteractiveEnrichmentByDefault(t *testing.T) {
	client := &fakeModelClient{deckObj: timelineResponse()}
	svc := newTestService(client, &fakeResolver{}, nil)

	d, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{Topic: "fusion power"})
	if err != nil {
		t.Fatalf("GenerateDeck: %v", err)
	}

	var timeline *models.Slide
	for _, s := range d.Slides {
		if s.Type == models.SlideTypeTimeline {
			timeline = s
		}
	}
	if timeline == nil {
		t.Fatal("timeline slide missing from deck")
	}
	if len(timeline.NestedCards) == 0 {
		t.Fatal("timeline slide has no nested cards")
	}
	if timeline.NestedCards[0].Title != "2022" {
		t.Errorf("first card title = %q, want 2022", timeline.NestedCards[0].Title)
	}
	if timeline.Layout != "timeline" {
		t.Errorf("layout = %q, want timeline", timeline.Layout)
	}
}

func TestGenerateDeck_InteractiveDisabled(t *testing.T) {
	client := &fakeModelClient{deckObj: timelineResponse()}
	svc := newTestService(client, &fakeResolver{}, nil)

	off := false
	d, err := svc.GenerateDeck(context.Background(), &models.GenerateDeckRequest{
		Topic: "fusion power", Interactive: &off,
	})
	if err != nil {
		t.Fatalf("GenerateDeck: %v", err)
	}

	for i, s := range d.Slides {
		if len(s.Toggles) > 0 || len(s.NestedCards) > 0 {
			t.Errorf("slide %d gained interactive elements with interactive=false", i)
		}
	}
}

func TestEnhanceSlide_Modes(t *testing.T) {
	svc := newTestService(&fakeModelClient{}, &fakeResolver{}, nil)

	t.Run("interactive adds toggles", func(t *testing.T) {
		slide, err := svc.EnhanceSlide(&models.EnhanceSlideRequest{
			Slide: models.Slide{
				Type:    models.SlideTypeContent,
				Title:   "Common Questions",
				Content: "• What does it cost?\n• How long is onboarding?",
			},
			EnhancementType: models.EnhanceInteractive,
		})
		if err != nil {
			t.Fatalf("EnhanceSlide: %v", err)
		}
		if len(slide.Toggles) != 2 {
			t.Fatalf("toggles = %d, want 2", len(slide.Toggles))
		}
		if slide.Layout != "qa" {
			t.Errorf("layout = %q, want qa", slide.Layout)
		}
	})

	t.Run("layout recomputes height", func(t *testing.T) {
		slide, err := svc.EnhanceSlide(&models.EnhanceSlideRequest{
			Slide: models.Slide{
				Type:    models.SlideTypeContent,
				Title:   "Dense Slide",
				Content: "• one\n• two\n• three\n• four\n• five",
			},
			EnhancementType: models.EnhanceLayout,
		})
		if err != nil {
			t.Fatalf("EnhanceSlide: %v", err)
		}
		if slide.Layout == "" {
			t.Error("layout left empty")
		}
		if slide.Height <= 0 {
			t.Errorf("height = %d", slide.Height)
		}
	})

	t.Run("default mode normalizes content", func(t *testing.T) {
		slide, err := svc.EnhanceSlide(&models.EnhanceSlideRequest{
			Slide: models.Slide{
				Type:    models.SlideTypeContent,
				Title:   "Capacity Planning For Growth",
				Content: "First point without markers\nSecond point without markers",
			},
		})
		if err != nil {
			t.Fatalf("EnhanceSlide: %v", err)
		}
		if !strings.HasPrefix(slide.Content, "•") {
			t.Errorf("content not bulleted: %q", slide.Content)
		}
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		_, err := svc.EnhanceSlide(&models.EnhanceSlideRequest{
			Slide:           models.Slide{Title: "T", Content: "c"},
			EnhancementType: "sparkle",
		})
		if err == nil {
			t.Fatal("expected error for unknown enhancement type")
		}
	})
}
