package critique

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Translator translates one piece of text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, language string, persona Persona) (string, error)
}

// ModelTranslator translates through the generative model.
type ModelTranslator struct {
	Model Model
}

func (t ModelTranslator) Translate(ctx context.Context, text, language string, persona Persona) (string, error) {
	out, err := t.Model.Generate(ctx, ModelRequest{
		Operation: OperationTranslate,
		Prompt:    BuildTranslationPrompt(text, language, persona),
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptyTranslation
	}
	return out, nil
}

const translateConcurrency = 4

// Translate returns a copy of res with every text field translated into
// language. Numeric fields are untouched. Empty or whitespace-only fields are
// skipped without calling tr, and a field whose translation fails keeps its
// original text.
func Translate(ctx context.Context, tr Translator, res Result, language, personaKey string) Result {
	out := cloneResult(res)
	out.Language = language
	if tr == nil {
		return out
	}
	persona, ok := LookupPersona(personaKey)
	if !ok {
		persona = personas["friendly-mentor"]
	}

	// map values are not addressable, so category texts go through a slice
	cats := make([]string, len(Categories))
	for i, c := range Categories {
		cats[i] = out.Analysis.Categories[c]
	}
	fields := []*string{&out.Summary}
	for i := range cats {
		fields = append(fields, &cats[i])
	}
	for _, list := range [][]string{
		out.Analysis.Overall.Strengths,
		out.Analysis.Overall.Improvements,
		out.Analysis.Overall.Modifications,
	} {
		for i := range list {
			fields = append(fields, &list[i])
		}
	}

	var g errgroup.Group
	g.SetLimit(translateConcurrency)
	for _, field := range fields {
		field := field
		if strings.TrimSpace(*field) == "" {
			continue
		}
		g.Go(func() error {
			translated, err := tr.Translate(ctx, *field, language, persona)
			if err == nil && strings.TrimSpace(translated) != "" {
				*field = translated
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range Categories {
		out.Analysis.Categories[c] = cats[i]
	}
	return out
}

func cloneResult(r Result) Result {
	out := r
	out.Tags = append([]string{}, r.Tags...)
	out.Analysis.Categories = make(map[string]string, len(Categories))
	for _, c := range Categories {
		out.Analysis.Categories[c] = r.Analysis.Categories[c]
	}
	out.Analysis.Overall = OverallNotes{
		Strengths:     append([]string{}, r.Analysis.Overall.Strengths...),
		Improvements:  append([]string{}, r.Analysis.Overall.Improvements...),
		Modifications: append([]string{}, r.Analysis.Overall.Modifications...),
	}
	return out
}
