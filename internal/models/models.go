package models

import (
	"time"

	"github.com/google/uuid"
)

// Slide types produced by the synthesis pipeline.
const (
	SlideTypeTitle      = "title"
	SlideTypeContent    = "content"
	SlideTypeHook       = "hook"
	SlideTypeStats      = "stats"
	SlideTypeComparison = "comparison"
	SlideTypeTimeline   = "timeline"
	SlideTypeQuote      = "quote"
	SlideTypeConclusion = "conclusion"
)

// Chart types understood by the renderer.
const (
	ChartTypeBar     = "bar"
	ChartTypePie     = "pie"
	ChartTypeLine    = "line"
	ChartTypeScatter = "scatter"
)

// Media asset providers.
const (
	ProviderInference = "inference" // hosted inference API (binary image body)
	ProviderGemini    = "gemini"
	ProviderURL       = "url"   // render-time URL reference, terminal fallback
	ProviderChart     = "chart" // locally rendered chart
	ProviderNone      = "none"  // explicit empty asset
)

// ChartSpec describes a chart to render for a slide.
type ChartSpec struct {
	Needed      bool      `json:"needed"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Description string    `json:"description,omitempty"`
}

// Valid reports whether the spec can be rendered: equal-length, non-empty labels and values.
func (s *ChartSpec) Valid() bool {
	return s != nil && len(s.Labels) > 0 && len(s.Labels) == len(s.Values)
}

// MediaAsset is the resolved visual attached to a slide: inline data URI or reference URL.
type MediaAsset struct {
	Provider string `json:"provider"`
	Payload  string `json:"payload"`
}

// Empty reports whether the asset carries no usable payload.
func (a *MediaAsset) Empty() bool {
	return a == nil || a.Payload == ""
}

// Toggle is a collapsible text section on a slide.
type Toggle struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsExpanded bool   `json:"isExpanded"`
}

// NestedCard is a sub-card embedded within a slide.
type NestedCard struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Layout  string `json:"layout"`
}

// SlideColors is the theme palette applied to a slide.
type SlideColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Font       string `json:"font"`
}

// Slide is one card of a deck. After media resolution exactly one of
// ImageAsset/ChartAsset is non-empty.
type Slide struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Layout      string      `json:"layout"`
	ImagePrompt string      `json:"imagePrompt,omitempty"`
	ChartSpec   *ChartSpec  `json:"chartSpec,omitempty"`
	ImageAsset  *MediaAsset  `json:"imageAsset"`
	ChartAsset  *MediaAsset  `json:"chartAsset"`
	Toggles     []Toggle     `json:"toggles,omitempty"`
	NestedCards []NestedCard `json:"nestedCards,omitempty"`
	Footnotes   []string     `json:"footnotes,omitempty"`
	Height      int          `json:"height"`
	Colors      SlideColors  `json:"colors"`
}

// DeckMetadata is stamped by the assembler.
type DeckMetadata struct {
	TotalSlides int       `json:"totalSlides"`
	HasCharts   bool      `json:"hasCharts"`
	HasImages   bool      `json:"hasImages"`
	GeneratedAt time.Time `json:"generatedAt"`
	Model       string    `json:"model,omitempty"`
	Theme       string    `json:"theme"`
}

// Deck is the complete generated presentation, immutable after assembly.
type Deck struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Theme       string       `json:"theme"`
	Slides      []*Slide     `json:"slides"`
	Metadata    DeckMetadata `json:"metadata"`
}

// Outline is a section-level sketch of a deck, used as generation input.
type Outline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// OutlineSection is one section of an outline.
type OutlineSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// GenerateDeckRequest is the payload for POST /v1/decks.
// Interactive defaults to true; nil means enabled.
type GenerateDeckRequest struct {
	Topic       string `json:"topic"`
	Audience    string `json:"audience,omitempty"`
	Model       string `json:"model,omitempty"`
	Theme       string `json:"theme,omitempty"`
	Interactive *bool  `json:"interactive,omitempty"`
}

// OutlineRequest is the payload for POST /v1/outlines.
type OutlineRequest struct {
	Content string `json:"content"`
}

// DeckFromOutlineRequest is the payload for POST /v1/outlines/deck.
type DeckFromOutlineRequest struct {
	Outline     Outline `json:"outline"`
	Audience    string  `json:"audience,omitempty"`
	Model       string  `json:"model,omitempty"`
	Theme       string  `json:"theme,omitempty"`
	Interactive *bool   `json:"interactive,omitempty"`
}

// Slide enhancement modes for POST /v1/slides/enhance.
const (
	EnhanceContent     = "content"
	EnhanceLayout      = "layout"
	EnhanceInteractive = "interactive"
	EnhanceOverall     = "overall"
)

// EnhanceSlideRequest is the payload for POST /v1/slides/enhance.
// EnhancementType defaults to "content".
type EnhanceSlideRequest struct {
	Slide           Slide  `json:"slide"`
	EnhancementType string `json:"enhancementType,omitempty"`
}

// ModelInfo describes a selectable text model.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
}

// ErrorResponse is the uniform error body for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
