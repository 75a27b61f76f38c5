package themes

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/snappy-loop/decks/internal/models"
)

// Theme is a named color palette plus image-style keywords appended to image prompts.
type Theme struct {
	Name            string   `json:"name"`
	PrimaryColor    string   `json:"primary_color"`
	SecondaryColor  string   `json:"secondary_color"`
	AccentColor     string   `json:"accent_color"`
	BackgroundColor string   `json:"background_color"`
	TextColor       string   `json:"text_color"`
	FontFamily      string   `json:"font_family"`
	StyleKeywords   []string `json:"style_keywords"`
}

// Colors returns the palette in slide form.
func (t Theme) Colors() models.SlideColors {
	return models.SlideColors{
		Primary:    t.PrimaryColor,
		Secondary:  t.SecondaryColor,
		Accent:     t.AccentColor,
		Background: t.BackgroundColor,
		Text:       t.TextColor,
		Font:       t.FontFamily,
	}
}

// StylePrompt appends the theme's style keywords to an image prompt.
func (t Theme) StylePrompt(prompt string) string {
	if len(t.StyleKeywords) == 0 {
		return prompt
	}
	return prompt + ", " + strings.Join(t.StyleKeywords, ", ")
}

// Catalog holds built-in and custom themes. Safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	themes map[string]Theme
	rng    *rand.Rand
}

// NewCatalog returns a catalog seeded with the built-in themes.
// rng picks a theme when none is requested; it must not be shared unguarded.
func NewCatalog(rng *rand.Rand) *Catalog {
	c := &Catalog{themes: make(map[string]Theme), rng: rng}
	for _, t := range builtins() {
		c.themes[strings.ToLower(t.Name)] = t
	}
	return c
}

// Get returns the named theme, or a random built-in when name is empty or
// unknown. Takes the write lock because the fallback advances rng.
func (c *Catalog) Get(name string) Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.themes[strings.ToLower(name)]; ok {
		return t
	}
	names := c.sortedNamesLocked()
	return c.themes[names[c.rng.Intn(len(names))]]
}

// List returns all themes sorted by name.
func (c *Catalog) List() []Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Theme, 0, len(c.themes))
	for _, name := range c.sortedNamesLocked() {
		out = append(out, c.themes[name])
	}
	return out
}

// CreateCustom registers a custom theme. Empty fields take the modern defaults.
func (c *Catalog) CreateCustom(t Theme) (Theme, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Theme{}, fmt.Errorf("theme name is required")
	}
	def := builtins()[0]
	if t.PrimaryColor == "" {
		t.PrimaryColor = def.PrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = def.SecondaryColor
	}
	if t.AccentColor == "" {
		t.AccentColor = def.AccentColor
	}
	if t.BackgroundColor == "" {
		t.BackgroundColor = def.BackgroundColor
	}
	if t.TextColor == "" {
		t.TextColor = def.TextColor
	}
	if t.FontFamily == "" {
		t.FontFamily = def.FontFamily
	}
	if len(t.StyleKeywords) == 0 {
		t.StyleKeywords = []string{"professional", "clean"}
	}
	c.mu.Lock()
	c.themes[strings.ToLower(t.Name)] = t
	c.mu.Unlock()
	return t, nil
}

func (c *Catalog) sortedNamesLocked() []string {
	names := make([]string, 0, len(c.themes))
	for name := range c.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LayoutFor maps a slide type to its default layout.
func LayoutFor(slideType string) string {
	switch slideType {
	case models.SlideTypeTitle, models.SlideTypeHook, models.SlideTypeConclusion, models.SlideTypeQuote:
		return "center"
	case models.SlideTypeComparison:
		return "two-column"
	case models.SlideTypeTimeline:
		return "timeline"
	default:
		return "left"
	}
}

func builtins() []Theme {
	return []Theme{
		{
			Name:            "Modern",
			PrimaryColor:    "#3b82f6",
			SecondaryColor:  "#1e40af",
			AccentColor:     "#60a5fa",
			BackgroundColor: "#ffffff",
			TextColor:       "#1f2937",
			FontFamily:      "Inter, sans-serif",
			StyleKeywords:   []string{"modern", "clean", "minimalist", "flat design", "professional"},
		},
		{
			Name:            "Dark",
			PrimaryColor:    "#1f2937",
			SecondaryColor:  "#374151",
			AccentColor:     "#6b7280",
			BackgroundColor: "#111827",
			TextColor:       "#f9fafb",
			FontFamily:      "Inter, sans-serif",
			StyleKeywords:   []string{"dark", "moody", "sophisticated", "high contrast", "professional"},
		},
		{
			Name:            "Warm",
			PrimaryColor:    "#f59e0b",
			SecondaryColor:  "#d97706",
			AccentColor:     "#fbbf24",
			BackgroundColor: "#fef3c7",
			TextColor:       "#1f2937",
			FontFamily:      "Inter, sans-serif",
			StyleKeywords:   []string{"warm", "friendly", "approachable", "soft colors", "inviting"},
		},
		{
			Name:            "Corporate",
			PrimaryColor:    "#1e40af",
			SecondaryColor:  "#1e3a8a",
			AccentColor:     "#3b82f6",
			BackgroundColor: "#f8fafc",
			TextColor:       "#1e293b",
			FontFamily:      "Inter, sans-serif",
			StyleKeywords:   []string{"corporate", "professional", "business", "formal", "trustworthy"},
		},
		{
			Name:            "Creative",
			PrimaryColor:    "#8b5cf6",
			SecondaryColor:  "#7c3aed",
			AccentColor:     "#a78bfa",
			BackgroundColor: "#faf5ff",
			TextColor:       "#1f2937",
			FontFamily:      "Inter, sans-serif",
			StyleKeywords:   []string{"creative", "artistic", "vibrant", "innovative", "inspiring"},
		},
	}
}
