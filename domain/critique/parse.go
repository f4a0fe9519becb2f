package critique

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	errNoJSONObject = errors.New("critique: no JSON object in reply")
	fencePattern    = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// ExtractJSONObject strips Markdown fences and returns the first balanced
// {...} span of text. Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errNoJSONObject
}

// flexText accepts a string, an object with a text-like field, or a list of strings.
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if list, ok := v.([]any); ok {
		*f = flexText(strings.Join(toStrings(list), " "))
		return nil
	}
	*f = flexText(textOf(v))
	return nil
}

// flexList accepts a list of strings or objects, or a single string.
type flexList []string

func (f *flexList) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = toStrings(v)
	return nil
}

type modelReply struct {
	DetectedGenre  string              `json:"detectedGenre"`
	Summary        flexText            `json:"summary"`
	OverallScore   *float64            `json:"overallScore"`
	CategoryScores map[string]*float64 `json:"categoryScores"`
	Tags           flexList            `json:"tags"`
	IsNotEvaluable bool                `json:"isNotEvaluable"`
	Reason         flexText            `json:"reason"`
	Analysis       struct {
		Composition flexText `json:"composition"`
		Lighting    flexText `json:"lighting"`
		Color       flexText `json:"color"`
		Focus       flexText `json:"focus"`
		Creativity  flexText `json:"creativity"`
		Overall     struct {
			Strengths     flexList `json:"strengths"`
			Improvements  flexList `json:"improvements"`
			Modifications flexList `json:"modifications"`
		} `json:"overall"`
	} `json:"analysis"`
}

const maxTags = 10

// ParseResult turns raw model text into a Result. It never fails: invalid
// JSON or a reply without overallScore or categoryScores yields
// DefaultResult(ReasonParseFailed).
func ParseResult(text string) Result {
	span, err := ExtractJSONObject(text)
	if err != nil {
		return DefaultResult(ReasonParseFailed)
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(span), &reply); err != nil {
		return DefaultResult(ReasonParseFailed)
	}

	if reply.IsNotEvaluable {
		res := DefaultResult(ReasonModelDeclined)
		if s := strings.TrimSpace(string(reply.Reason)); s != "" {
			res.Summary = s
		}
		return res
	}

	if reply.OverallScore == nil || reply.CategoryScores == nil {
		return DefaultResult(ReasonParseFailed)
	}

	res := Result{
		DetectedGenre: NormalizeGenre(reply.DetectedGenre),
		Summary:       strings.TrimSpace(string(reply.Summary)),
		OverallScore:  clampScore(*reply.OverallScore),
		Tags:          cleanTags(reply.Tags),
		Analysis:      NewPayload(),
	}
	for _, c := range Categories {
		if v := reply.CategoryScores[c]; v != nil {
			res.CategoryScores.set(c, clampScore(*v))
		}
	}

	a := reply.Analysis
	res.Analysis.Categories[CategoryComposition] = string(a.Composition)
	res.Analysis.Categories[CategoryLighting] = string(a.Lighting)
	res.Analysis.Categories[CategoryColor] = string(a.Color)
	res.Analysis.Categories[CategoryFocus] = string(a.Focus)
	res.Analysis.Categories[CategoryCreativity] = string(a.Creativity)
	if len(a.Overall.Strengths) > 0 {
		res.Analysis.Overall.Strengths = a.Overall.Strengths
	}
	if len(a.Overall.Improvements) > 0 {
		res.Analysis.Overall.Improvements = a.Overall.Improvements
	}
	if len(a.Overall.Modifications) > 0 {
		res.Analysis.Overall.Modifications = a.Overall.Modifications
	}
	return res
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
