package themes

import (
	"math/rand"
	"testing"

	"github.com/snappy-loop/decks/internal/models"
)

func newTestCatalog() *Catalog {
	return NewCatalog(rand.New(rand.NewSource(7)))
}

func TestGet_KnownThemeCaseInsensitive(t *testing.T) {
	c := newTestCatalog()
	for _, name := range []string{"dark", "Dark", "DARK"} {
		if got := c.Get(name); got.Name != "Dark" {
			t.Errorf("Get(%q) = %q, want Dark", name, got.Name)
		}
	}
}

func TestGet_UnknownThemeFallsBackToBuiltin(t *testing.T) {
	c := newTestCatalog()
	got := c.Get("no-such-theme")
	if got.Name == "" || got.PrimaryColor == "" {
		t.Fatalf("fallback theme incomplete: %+v", got)
	}

	// Same seed, same pick.
	again := newTestCatalog().Get("no-such-theme")
	if again.Name != got.Name {
		t.Errorf("fallback not reproducible: %q vs %q", again.Name, got.Name)
	}
}

func TestList_SortedBuiltins(t *testing.T) {
	c := newTestCatalog()
	list := c.List()
	if len(list) != 5 {
		t.Fatalf("got %d builtins, want 5", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Errorf("list not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}

func TestCreateCustom_FillsDefaults(t *testing.T) {
	c := newTestCatalog()
	created, err := c.CreateCustom(Theme{Name: "Ocean", PrimaryColor: "#006994"})
	if err != nil {
		t.Fatalf("CreateCustom: %v", err)
	}
	if created.PrimaryColor != "#006994" {
		t.Errorf("explicit color overwritten: %q", created.PrimaryColor)
	}
	if created.BackgroundColor == "" || created.TextColor == "" || created.FontFamily == "" {
		t.Errorf("defaults not filled: %+v", created)
	}
	if got := c.Get("ocean"); got.Name != "Ocean" {
		t.Errorf("custom theme not retrievable: %+v", got)
	}
}

func TestCreateCustom_RequiresName(t *testing.T) {
	c := newTestCatalog()
	if _, err := c.CreateCustom(Theme{PrimaryColor: "#000000"}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestStylePrompt_AppendsKeywords(t *testing.T) {
	theme := newTestCatalog().Get("modern")
	got := theme.StylePrompt("a skyline at night")
	if got == "a skyline at night" {
		t.Error("style keywords not appended")
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		slideType string
		want      string
	}{
		{models.SlideTypeTitle, "center"},
		{models.SlideTypeHook, "center"},
		{models.SlideTypeQuote, "center"},
		{models.SlideTypeConclusion, "center"},
		{models.SlideTypeComparison, "two-column"},
		{models.SlideTypeTimeline, "timeline"},
		{models.SlideTypeContent, "left"},
		{models.SlideTypeStats, "left"},
	}
	for _, tt := range tests {
		if got := LayoutFor(tt.slideType); got != tt.want {
			t.Errorf("LayoutFor(%q) = %q, want %q", tt.slideType, got, tt.want)
		}
	}
}
