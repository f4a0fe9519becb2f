package critique

import "strings"

// Weights sets how much each category is emphasised for a genre, 0 to 5.
// They steer the model's attention; they are not score multipliers.
type Weights struct {
	Composition int `json:"composition"`
	Lighting    int `json:"lighting"`
	Color       int `json:"color"`
	Focus       int `json:"focus"`
	Creativity  int `json:"creativity"`
}

// ByCategory returns the weight of one category key.
func (w Weights) ByCategory(category string) int {
	switch category {
	case CategoryComposition:
		return w.Composition
	case CategoryLighting:
		return w.Lighting
	case CategoryColor:
		return w.Color
	case CategoryFocus:
		return w.Focus
	case CategoryCreativity:
		return w.Creativity
	}
	return 0
}

const GenreGeneral = "general"

var genreWeights = map[string]Weights{
	"landscape":    {Composition: 5, Lighting: 5, Color: 4, Focus: 3, Creativity: 3},
	"portrait":     {Composition: 4, Lighting: 5, Color: 3, Focus: 5, Creativity: 3},
	"street":       {Composition: 5, Lighting: 3, Color: 2, Focus: 3, Creativity: 5},
	"macro":        {Composition: 3, Lighting: 4, Color: 3, Focus: 5, Creativity: 3},
	"wildlife":     {Composition: 4, Lighting: 3, Color: 3, Focus: 5, Creativity: 3},
	"architecture": {Composition: 5, Lighting: 4, Color: 3, Focus: 4, Creativity: 3},
	"night":        {Composition: 3, Lighting: 5, Color: 4, Focus: 4, Creativity: 4},
	"food":         {Composition: 4, Lighting: 5, Color: 5, Focus: 4, Creativity: 2},
	"abstract":     {Composition: 4, Lighting: 3, Color: 4, Focus: 2, Creativity: 5},
	GenreGeneral:   {Composition: 4, Lighting: 4, Color: 3, Focus: 3, Creativity: 3},
}

// NormalizeGenre maps free-form model output onto a known genre key.
func NormalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if _, ok := genreWeights[g]; ok {
		return g
	}
	switch {
	case strings.Contains(g, "landscape"), strings.Contains(g, "nature"):
		return "landscape"
	case strings.Contains(g, "portrait"), strings.Contains(g, "people"):
		return "portrait"
	case strings.Contains(g, "street"), strings.Contains(g, "documentary"):
		return "street"
	case strings.Contains(g, "animal"), strings.Contains(g, "bird"):
		return "wildlife"
	case strings.Contains(g, "building"), strings.Contains(g, "urban"):
		return "architecture"
	case strings.Contains(g, "astro"), strings.Contains(g, "night"):
		return "night"
	}
	return GenreGeneral
}

// WeightsFor returns the weights for genre, falling back to general.
func WeightsFor(genre string) Weights {
	return genreWeights[NormalizeGenre(genre)]
}

// Genres lists the known genre keys.
func Genres() []string {
	out := make([]string, 0, len(genreWeights))
	for g := range genreWeights {
		out = append(out, g)
	}
	return out
}
