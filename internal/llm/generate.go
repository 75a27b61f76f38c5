package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
)

const deckSystemPrompt = `You are an expert presentation designer. Generate a professional presentation based on the user's prompt.

Return a JSON response with this exact structure:
{
  "title": "Presentation Title",
  "description": "Brief description",
  "slides": [
    {
      "type": "content",
      "title": "Slide Title",
      "content": "• Bullet one\n• Bullet two\n• Bullet three",
      "imagePrompt": "Description for AI image generation",
      "chart": {
        "needed": false,
        "type": "bar",
        "title": "Chart title",
        "labels": ["A", "B"],
        "values": [10, 20],
        "description": "One-line caption"
      }
    }
  ]
}

Slide types: title, content, hook, stats, comparison, timeline, quote, conclusion.
Chart types: bar, pie, line, scatter. Set chart.needed to true only when the slide
presents numeric data worth visualizing; labels and values must have the same length.
For every slide include an "imagePrompt" with a detailed description matching the content.
Return ONLY the JSON object, no explanations and no markdown fences.`

// GenerateDeckContent asks the model for a full deck and returns the parsed
// top-level object. The response is normalized and repaired before parsing;
// a *ParseError is returned when every repair strategy fails.
func (c *Client) GenerateDeckContent(ctx context.Context, topic, audience, model string) (map[string]any, error) {
	audienceLine := ""
	if audience != "" {
		audienceLine = fmt.Sprintf("\n- Write for this audience: %s", audience)
	}
	user := fmt.Sprintf(`Create a professional presentation about: %s

Make it engaging with:
- A compelling title slide and a conclusion slide
- 10 to 15 content slides with key points
- Bullet points and clear structure%s
- Charts only where real numeric comparisons help
- Detailed image prompts that match each slide`, topic, audienceLine)

	raw, err := c.chat(ctx, "GenerateDeckContent", deckSystemPrompt, user, model, 0.7, 4096)
	if err != nil {
		return nil, err
	}
	return ExtractObject(raw)
}

const outlineSystemPrompt = `You are a presentation expert. Create a concise slide outline from the provided content.
Return JSON with: {"title": "...", "sections": [{"title": "...", "bullets": ["...", "..."]}]}
Use 8 to 15 sections, short bullet points, business-ready language.
Return ONLY the JSON object, no explanations and no markdown fences.`

// GenerateOutline turns free text into a section outline.
func (c *Client) GenerateOutline(ctx context.Context, content string) (*models.Outline, error) {
	const maxOutlineInput = 15000
	if len(content) > maxOutlineInput {
		content = content[:maxOutlineInput]
	}
	user := "Content for outline:\n\n" + content

	raw, err := c.chat(ctx, "GenerateOutline", outlineSystemPrompt, user, "", 0.5, 1500)
	if err != nil {
		return nil, err
	}

	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	// Round-trip through JSON to get the typed outline out of the generic map.
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode outline: %w", err)
	}
	var outline models.Outline
	if err := json.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("outline has unexpected shape: %w", err)
	}
	if strings.TrimSpace(outline.Title) == "" {
		outline.Title = "Outline"
	}
	log.Info().
		Int("sections", len(outline.Sections)).
		Msg("Outline generation complete")
	return &outline, nil
}

const outlineDeckSystemPrompt = `You are a presentation expert. Given an outline (title + sections with bullets),
produce the same JSON deck structure used for direct generation:
{"title": "...", "description": "...", "slides": [{"type": "...", "title": "...", "content": "...", "imagePrompt": "...", "chart": {...}}]}
- Convert bullets into concise lines (max 6 per slide).
- Keep content business-ready, clear, and short.
- Slide types: title, content, hook, stats, comparison, timeline, quote, conclusion.
Return ONLY the JSON object, no explanations and no markdown fences.`

// GenerateDeckFromOutline expands an outline into slide-level content.
func (c *Client) GenerateDeckFromOutline(ctx context.Context, outline *models.Outline, audience, model string) (map[string]any, error) {
	encoded, err := json.Marshal(outline)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outline: %w", err)
	}
	const maxOutlineInput = 15000
	user := "Outline to expand into slides:\n\n" + string(encoded)
	if len(user) > maxOutlineInput {
		user = user[:maxOutlineInput]
	}
	if audience != "" {
		user += "\n\nAudience: " + audience
	}

	raw, err := c.chat(ctx, "GenerateDeckFromOutline", outlineDeckSystemPrompt, user, model, 0.6, 2200)
	if err != nil {
		return nil, err
	}
	return ExtractObject(raw)
}
