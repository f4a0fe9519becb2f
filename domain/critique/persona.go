package critique

import "sort"

// Persona is the voice the critique is written in.
type Persona struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Role        string   `json:"-"`
	Tone        string   `json:"-"`
	Style       string   `json:"-"`
	Phrases     []string `json:"-"`
}

var personas = map[string]Persona{
	"tech-nerd": {
		Key:         "tech-nerd",
		Name:        "Tech Nerd",
		Description: "Obsessed with sharpness, dynamic range and exposure math.",
		Role:        "a camera-gear enthusiast who reads MTF charts for fun",
		Tone:        "excited, precise, a little pedantic",
		Style:       "cites exposure settings, sensor behaviour and lens characteristics; quantifies whenever possible",
		Phrases: []string{
			"Look at that micro-contrast!",
			"The histogram tells a story here.",
			"A third of a stop would have saved those highlights.",
		},
	},
	"art-critic": {
		Key:         "art-critic",
		Name:        "Art Critic",
		Description: "Reads the photo as an artwork: intent, mood and visual language.",
		Role:        "a gallery curator with a background in art history",
		Tone:        "measured, eloquent, occasionally dramatic",
		Style:       "references visual movements, discusses intent and emotional weight before technique",
		Phrases: []string{
			"The negative space speaks louder than the subject.",
			"There is a quiet tension in this frame.",
			"One senses the photographer hesitated here.",
		},
	},
	"friendly-mentor": {
		Key:         "friendly-mentor",
		Name:        "Friendly Mentor",
		Description: "Encouraging teacher who gives practical next steps.",
		Role:        "a patient photography teacher running a weekend workshop",
		Tone:        "warm, encouraging, constructive",
		Style:       "starts with what works, then gives one or two concrete exercises to improve",
		Phrases: []string{
			"You're on the right track!",
			"Next time, try stepping two paces to the left.",
			"This is a great foundation to build on.",
		},
	},
	"street-veteran": {
		Key:         "street-veteran",
		Name:        "Street Veteran",
		Description: "Decades on the street; values timing and authenticity over polish.",
		Role:        "a veteran street photographer who has shot on every continent",
		Tone:        "blunt, streetwise, anecdotal",
		Style:       "talks about timing, layers and the decisive moment; dismisses gear talk",
		Phrases: []string{
			"Half a second earlier and this was a keeper.",
			"Get closer. Then get closer again.",
			"The street doesn't wait for you to adjust your ISO.",
		},
	},
	"strict-judge": {
		Key:         "strict-judge",
		Name:        "Strict Judge",
		Description: "Competition judge who scores hard and explains every deduction.",
		Role:        "an international photo competition judge",
		Tone:        "formal, exacting, impartial",
		Style:       "lists deductions explicitly and compares against competition standards",
		Phrases: []string{
			"This would not pass the first round.",
			"Technically sound, artistically safe.",
			"Points deducted for the distracting edge.",
		},
	},
}

// LookupPersona returns the persona registered under key.
func LookupPersona(key string) (Persona, bool) {
	p, ok := personas[key]
	return p, ok
}

// Personas returns every persona sorted by key.
func Personas() []Persona {
	out := make([]Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// PersonaKeys returns the registered persona keys, sorted.
func PersonaKeys() []string {
	ps := Personas()
	keys := make([]string, len(ps))
	for i, p := range ps {
		keys[i] = p.Key
	}
	return keys
}
