package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/deck"
	"github.com/snappy-loop/decks/internal/events"
	"github.com/snappy-loop/decks/internal/models"
	"github.com/snappy-loop/decks/internal/themes"
	"golang.org/x/sync/errgroup"
)

// ModelClient is the text-model surface the service depends on.
type ModelClient interface {
	DefaultModel() string
	ListModels() []models.ModelInfo
	GenerateDeckContent(ctx context.Context, topic, audience, model string) (map[string]any, error)
	GenerateOutline(ctx context.Context, content string) (*models.Outline, error)
	GenerateDeckFromOutline(ctx context.Context, outline *models.Outline, audience, model string) (map[string]any, error)
}

// SlideResolver fills a slide's visual asset.
type SlideResolver interface {
	ResolveSlide(ctx context.Context, slide *models.Slide)
}

// EventPublisher pushes deck lifecycle events to the broker.
type EventPublisher interface {
	PublishDeckEvent(ctx context.Context, event events.DeckEvent) error
}

// DeckService runs the full generation pipeline: model call, schema
// enforcement, enhancement, media resolution, theming, assembly.
type DeckService struct {
	client        ModelClient
	resolver      SlideResolver
	themes        *themes.Catalog
	enhancer      *deck.Enhancer
	publisher     EventPublisher
	maxConcurrent int
}

// NewDeckService creates a DeckService. publisher may be nil when no broker
// is configured; events are then skipped.
func NewDeckService(
	client ModelClient,
	resolver SlideResolver,
	catalog *themes.Catalog,
	enhancer *deck.Enhancer,
	publisher EventPublisher,
	maxConcurrent int,
) *DeckService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &DeckService{
		client:        client,
		resolver:      resolver,
		themes:        catalog,
		enhancer:      enhancer,
		publisher:     publisher,
		maxConcurrent: maxConcurrent,
	}
}

// GenerateDeck builds a complete deck for a topic. A failing or unparseable
// model response degrades to a synthesized draft; the only error surfaced to
// the caller is a parseable response that carries no slide array.
func (s *DeckService) GenerateDeck(ctx context.Context, req *models.GenerateDeckRequest) (*models.Deck, error) {
	model := req.Model
	if model == "" {
		model = s.client.DefaultModel()
	}

	start := time.Now()
	obj, err := s.client.GenerateDeckContent(ctx, req.Topic, req.Audience, model)
	draft, err := s.draftFromResponse(obj, err, req.Topic)
	if err != nil {
		s.publishFailed(req.Topic, model, err)
		return nil, err
	}

	return s.finishDeck(ctx, draft, req.Topic, req.Audience, req.Theme, model, interactiveEnabled(req.Interactive), start)
}

// GenerateOutline turns raw topic or document text into a slide outline.
func (s *DeckService) GenerateOutline(ctx context.Context, req *models.OutlineRequest) (*models.Outline, error) {
	outline, err := s.client.GenerateOutline(ctx, req.Content)
	if err != nil {
		return nil, fmt.Errorf("generating outline: %w", err)
	}
	return outline, nil
}

// DeckFromOutline expands a user-edited outline into a full deck through the
// same enforcement and enhancement pipeline as GenerateDeck.
func (s *DeckService) DeckFromOutline(ctx context.Context, req *models.DeckFromOutlineRequest) (*models.Deck, error) {
	model := req.Model
	if model == "" {
		model = s.client.DefaultModel()
	}

	start := time.Now()
	obj, err := s.client.GenerateDeckFromOutline(ctx, &req.Outline, req.Audience, model)
	draft, err := s.draftFromResponse(obj, err, req.Outline.Title)
	if err != nil {
		s.publishFailed(req.Outline.Title, model, err)
		return nil, err
	}
	if draft.Title == "" {
		draft.Title = req.Outline.Title
	}

	return s.finishDeck(ctx, draft, req.Outline.Title, req.Audience, req.Theme, model, interactiveEnabled(req.Interactive), start)
}

// EnhanceSlide reworks a single slide without touching the rest of its deck:
// content cleanup, layout reset, interactivity, or all three.
func (s *DeckService) EnhanceSlide(req *models.EnhanceSlideRequest) (*models.Slide, error) {
	slide := req.Slide
	mode := req.EnhancementType
	if mode == "" {
		mode = models.EnhanceContent
	}

	switch mode {
	case models.EnhanceContent:
		s.enhanceSlideContent(&slide)
	case models.EnhanceLayout:
		deck.LayoutSlide(&slide)
	case models.EnhanceInteractive:
		deck.EnrichInteractivity(&slide)
	case models.EnhanceOverall:
		s.enhanceSlideContent(&slide)
		deck.EnrichInteractivity(&slide)
		deck.LayoutSlide(&slide)
	default:
		return nil, fmt.Errorf("unknown enhancement type %q", mode)
	}

	log.Info().
		Str("slide_id", slide.ID).
		Str("mode", mode).
		Msg("Slide enhanced")
	return &slide, nil
}

// enhanceSlideContent runs the deck-level enhancer over a single slide,
// using its own title as the topic anchor.
func (s *DeckService) enhanceSlideContent(slide *models.Slide) {
	slide.Content = deck.NormalizeBullets(slide.Content)
	s.enhancer.Enhance(&deck.Draft{Title: slide.Title, Slides: []*models.Slide{slide}}, slide.Title, "")
}

func interactiveEnabled(flag *bool) bool {
	return flag == nil || *flag
}

// ListModels returns the curated model catalog.
func (s *DeckService) ListModels() []models.ModelInfo {
	return s.client.ListModels()
}

// ListThemes returns all registered themes.
func (s *DeckService) ListThemes() []themes.Theme {
	return s.themes.List()
}

// CreateTheme registers a custom theme.
func (s *DeckService) CreateTheme(t themes.Theme) (themes.Theme, error) {
	return s.themes.CreateCustom(t)
}

// draftFromResponse converts a model response into a draft, synthesizing one
// when the model call or JSON repair failed outright.
func (s *DeckService) draftFromResponse(obj map[string]any, callErr error, topic string) (*deck.Draft, error) {
	if callErr != nil {
		log.Warn().Err(callErr).
			Str("topic", topic).
			Msg("Model response unusable, synthesizing deck")
		return deck.SynthesizedDraft(topic), nil
	}

	draft, err := deck.EnforceSchema(obj)
	if err != nil {
		if errors.Is(err, deck.ErrNoSlideArray) {
			return nil, err
		}
		log.Warn().Err(err).
			Str("topic", topic).
			Msg("Schema enforcement failed, synthesizing deck")
		return deck.SynthesizedDraft(topic), nil
	}
	if draft.Title == "" {
		draft.Title = deck.TitleFromTopic(topic)
	}
	return draft, nil
}

// finishDeck runs the shared tail of the pipeline: enhance, theme, resolve
// media in parallel, assemble, publish.
func (s *DeckService) finishDeck(ctx context.Context, draft *deck.Draft, topic, audience, themeName, model string, interactive bool, start time.Time) (*models.Deck, error) {
	s.enhancer.Enhance(draft, topic, audience)
	if interactive {
		deck.EnrichDraft(draft)
	}

	theme := s.themes.Get(themeName)
	deck.ApplyTheme(draft, theme)

	s.resolveMedia(ctx, draft.Slides)

	result := deck.Assemble(draft, model)

	log.Info().
		Str("deck_id", result.ID.String()).
		Str("topic", topic).
		Str("theme", result.Theme).
		Int("slides", len(result.Slides)).
		Dur("elapsed", time.Since(start)).
		Msg("Deck generated")

	s.publishGenerated(result, topic)
	return result, nil
}

// resolveMedia fills slide assets concurrently. Slide order is positional so
// parallel writes never reorder the deck; resolvers never return errors, the
// group only bounds concurrency.
func (s *DeckService) resolveMedia(ctx context.Context, slides []*models.Slide) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, slide := range slides {
		slide := slide
		g.Go(func() error {
			s.resolver.ResolveSlide(ctx, slide)
			return nil
		})
	}
	g.Wait()
}

func (s *DeckService) publishGenerated(d *models.Deck, topic string) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.publisher.PublishDeckEvent(ctx, events.DeckEvent{
		DeckID:      d.ID,
		Event:       events.EventDeckGenerated,
		Topic:       topic,
		Model:       d.Metadata.Model,
		TotalSlides: d.Metadata.TotalSlides,
	})
	if err != nil {
		log.Warn().Err(err).Str("deck_id", d.ID.String()).Msg("Failed to publish deck event")
	}
}

func (s *DeckService) publishFailed(topic, model string, cause error) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.publisher.PublishDeckEvent(ctx, events.DeckEvent{
		Event: events.EventDeckFailed,
		Topic: topic,
		Model: model,
		Error: cause.Error(),
	})
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to publish deck event")
	}
}
