package critique

import (
	"encoding/json"
	"strings"
)

// Placeholder lists shown on a card when an analysis carries no usable notes.
var (
	PlaceholderStrengths = []string{
		"Clear main subject",
		"Solid technical foundation",
	}
	PlaceholderImprovements = []string{
		"Experiment with a different angle",
		"Pay closer attention to the light",
	}
)

// extractor reads one list from one known location of the analysis JSON.
type extractor struct {
	name string
	path []string
}

func (e extractor) from(doc map[string]any) []string {
	var cur any = doc
	for _, key := range e.path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return toStrings(cur)
}

// Locations are tried in order; historic rows used each of these shapes.
var (
	strengthsChain = []extractor{
		{name: "overall.strengths", path: []string{"overall", "strengths"}},
		{name: "overall.overview.pros", path: []string{"overall", "overview", "pros"}},
		{name: "analysis.overall.strengths", path: []string{"analysis", "overall", "strengths"}},
	}
	improvementsChain = []extractor{
		{name: "overall.improvements", path: []string{"overall", "improvements"}},
		{name: "overall.overview.cons", path: []string{"overall", "overview", "cons"}},
		{name: "analysis.overall.improvements", path: []string{"analysis", "overall", "improvements"}},
	}
	modificationsChain = []extractor{
		{name: "overall.modifications", path: []string{"overall", "modifications"}},
		{name: "overall.suggestions", path: []string{"overall", "suggestions"}},
		{name: "analysis.overall.modifications", path: []string{"analysis", "overall", "modifications"}},
	}
)

func firstNonEmpty(doc map[string]any, chain []extractor) []string {
	for _, e := range chain {
		if list := e.from(doc); len(list) > 0 {
			return list
		}
	}
	return nil
}

func decodeDoc(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

// ExtractStrengths returns the first non-empty strengths list found in raw,
// or PlaceholderStrengths. Malformed JSON counts as no data.
func ExtractStrengths(raw []byte) []string {
	if list := firstNonEmpty(decodeDoc(raw), strengthsChain); len(list) > 0 {
		return list
	}
	return append([]string(nil), PlaceholderStrengths...)
}

// ExtractImprovements is ExtractStrengths for improvements.
func ExtractImprovements(raw []byte) []string {
	if list := firstNonEmpty(decodeDoc(raw), improvementsChain); len(list) > 0 {
		return list
	}
	return append([]string(nil), PlaceholderImprovements...)
}

// toStrings accepts a list of strings, a list of {text|title|description}
// objects or a single string.
func toStrings(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := textOf(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, k := range []string{"text", "title", "description", "comment"} {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
