package critique

import (
	"fmt"
	"sort"
	"strings"
)

var languageNames = map[string]string{
	"en": "English",
	"ko": "Korean",
	"ja": "Japanese",
	"zh": "Chinese (Simplified)",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"th": "Thai",
}

// LanguageName returns a human name for a language code, or the code itself.
func LanguageName(code string) string {
	if n, ok := languageNames[strings.ToLower(code)]; ok {
		return n
	}
	return code
}

const replySchema = `{
  "detectedGenre": "one of: landscape, portrait, street, macro, wildlife, architecture, night, food, abstract, general",
  "summary": "2-3 sentence overall impression",
  "overallScore": 0-100,
  "categoryScores": {"composition": 0-100, "lighting": 0-100, "color": 0-100, "focus": 0-100, "creativity": 0-100},
  "tags": ["3-8 short keywords"],
  "analysis": {
    "composition": "paragraph",
    "lighting": "paragraph",
    "color": "paragraph",
    "focus": "paragraph",
    "creativity": "paragraph",
    "overall": {
      "strengths": ["..."],
      "improvements": ["..."],
      "modifications": ["concrete edit or reshoot suggestions"]
    }
  },
  "isNotEvaluable": false,
  "reason": "only when isNotEvaluable is true"
}`

// BuildAnalysisPrompt renders the critique instruction for one persona,
// genre and output language.
func BuildAnalysisPrompt(p Persona, genre, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\n", p.Role)
	fmt.Fprintf(&b, "Tone: %s.\nStyle: %s.\n", p.Tone, p.Style)
	if len(p.Phrases) > 0 {
		b.WriteString("Phrases you might use (adapt them, do not copy verbatim):\n")
		for _, ph := range p.Phrases {
			fmt.Fprintf(&b, "- %q\n", ph)
		}
	}

	b.WriteString("\nCritique the attached photograph.\n")
	w := WeightsFor(genre)
	if genre != "" {
		fmt.Fprintf(&b, "The photo was classified as %q. ", NormalizeGenre(genre))
	}
	b.WriteString("Emphasis per category for this genre (0 = minor, 5 = decisive):\n")
	for _, c := range Categories {
		fmt.Fprintf(&b, "- %s: %d\n", c, w.ByCategory(c))
	}
	b.WriteString("Weights guide how much attention each category gets; score each category on its own merits.\n")

	fmt.Fprintf(&b, "\nWrite every text field in %s, keeping your persona's voice.\n", LanguageName(language))
	b.WriteString("If the image is not a photograph or cannot be judged, set isNotEvaluable to true and explain in reason.\n")
	b.WriteString("Reply with a single JSON object and nothing else, matching this schema:\n")
	b.WriteString(replySchema)
	return b.String()
}

// BuildTranslationPrompt asks for a translation of one text field.
func BuildTranslationPrompt(text, language string, p Persona) string {
	return fmt.Sprintf(`Translate the following photo critique text into %s.
Keep the voice of %s (tone: %s). Keep photography terms accurate.
Return only the translated text, without quotes or commentary.

%s`, LanguageName(language), p.Role, p.Tone, text)
}

// BuildGenrePrompt asks for a quick genre classification.
func BuildGenrePrompt() string {
	return fmt.Sprintf(`Classify the genre of the attached photograph.
Reply with a single JSON object: {"genre": "<one of: %s>", "confidence": 0.0-1.0}`,
		strings.Join(sortedGenres(), ", "))
}

func sortedGenres() []string {
	gs := Genres()
	sort.Strings(gs)
	return gs
}
