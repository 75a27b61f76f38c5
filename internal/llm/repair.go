package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// parseSnippetLen is how much of an unparseable response is kept for diagnostics.
const parseSnippetLen = 500

// ParseError reports that a model response could not be parsed as JSON after
// every repair strategy was exhausted. Snippet holds the start of the raw
// response for diagnostics.
type ParseError struct {
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse model response as JSON: %q", e.Snippet)
}

var (
	// Fenced block with optional language tag, possibly surrounded by prose.
	reFencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")
	// Outermost object: first { to last } (greedy).
	reOuterObject = regexp.MustCompile(`(?s)\{.*\}`)
	// A complete "key": scalar pair; the last match anchors truncation repair.
	reKeyValuePair = regexp.MustCompile(`"(?:[^"\\]|\\.)*"\s*:\s*(?:"(?:[^"\\]|\\.)*"|-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?|true|false|null)`)
)

// Normalize strips code-fence markers and leading labels from a model
// response, yielding a candidate JSON string.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if m := reFencedBlock.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	} else if strings.HasPrefix(s, "```") {
		// Opening fence without a closing one (truncated output).
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = strings.TrimSpace(s[idx+1:])
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	// Leading labels like "json:" or "JSON" before the object.
	for _, label := range []string{"json:", "JSON:", "json", "JSON"} {
		if strings.HasPrefix(s, label) {
			s = strings.TrimSpace(strings.TrimPrefix(s, label))
			break
		}
	}
	return s
}

// repairStrategy transforms a candidate string before a parse attempt.
// ok=false means the strategy does not apply and the chain advances.
type repairStrategy struct {
	name  string
	apply func(string) (string, bool)
}

// Ordered escalation, cheapest and most precise first. Kept as data so the
// order can be tested independently of execution.
var repairStrategies = []repairStrategy{
	{"direct", func(s string) (string, bool) { return s, s != "" }},
	{"outermost_object", extractOutermostObject},
	{"complete_truncated", completeTruncated},
}

// ExtractObject parses a model response into a generic JSON object, applying
// the repair escalation on failure. Returns *ParseError when all strategies fail.
func ExtractObject(raw string) (map[string]any, error) {
	candidate := Normalize(raw)

	for _, strat := range repairStrategies {
		attempt, ok := strat.apply(candidate)
		if !ok {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(attempt), &obj); err != nil {
			log.Debug().
				Str("strategy", strat.name).
				Err(err).
				Msg("JSON repair strategy failed, escalating")
			continue
		}
		if strat.name != "direct" {
			log.Info().
				Str("strategy", strat.name).
				Int("raw_len", len(raw)).
				Msg("Model response repaired")
		}
		return obj, nil
	}

	snippet := raw
	if len(snippet) > parseSnippetLen {
		snippet = snippet[:parseSnippetLen]
	}
	return nil, &ParseError{Snippet: snippet}
}

// extractOutermostObject returns the substring from the first { to the last }.
func extractOutermostObject(s string) (string, bool) {
	m := reOuterObject.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// completeTruncated assumes the candidate was cut mid-object: it truncates to
// the last complete "key": value closure, then appends the minimum closing
// brackets, in stack order, to balance what is still open.
func completeTruncated(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	s = s[start:]

	locs := reKeyValuePair.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return "", false
	}
	s = s[:locs[len(locs)-1][1]]

	// Track open brackets outside string literals.
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == '{' || c == '['):
			stack = append(stack, c)
		case !inString && (c == '}' || c == ']'):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		return "", false
	}

	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String(), true
}
