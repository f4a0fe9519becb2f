package critique

import (
	"encoding/json"
)

// PayloadSchemaVersion is written on every payload stored from now on.
const PayloadSchemaVersion = 2

// OverallNotes are the persona-styled takeaways of a critique.
type OverallNotes struct {
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	Modifications []string `json:"modifications"`
}

// Payload is the structured text of an analysis.
type Payload struct {
	SchemaVersion int               `json:"schemaVersion"`
	Categories    map[string]string `json:"categories"`
	Overall       OverallNotes      `json:"overall"`
}

// NewPayload returns an empty current-version payload with every category key.
func NewPayload() Payload {
	p := Payload{
		SchemaVersion: PayloadSchemaVersion,
		Categories:    make(map[string]string, len(Categories)),
		Overall: OverallNotes{
			Strengths:     []string{},
			Improvements:  []string{},
			Modifications: []string{},
		},
	}
	for _, c := range Categories {
		p.Categories[c] = ""
	}
	return p
}

func (p *Payload) normalize() {
	if p.Categories == nil {
		p.Categories = make(map[string]string, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := p.Categories[c]; !ok {
			p.Categories[c] = ""
		}
	}
	if p.Overall.Strengths == nil {
		p.Overall.Strengths = []string{}
	}
	if p.Overall.Improvements == nil {
		p.Overall.Improvements = []string{}
	}
	if p.Overall.Modifications == nil {
		p.Overall.Modifications = []string{}
	}
	p.SchemaVersion = PayloadSchemaVersion
}

// Marshal encodes the payload for storage.
func (p Payload) Marshal() ([]byte, error) {
	p.normalize()
	return json.Marshal(p)
}

// DecodePayload reads a stored payload of any historic shape. migrated is
// true when raw predates PayloadSchemaVersion and should be rewritten.
// Malformed JSON yields an empty payload and is left untouched.
func DecodePayload(raw []byte) (p Payload, migrated bool) {
	doc := decodeDoc(raw)
	if doc == nil {
		return NewPayload(), false
	}

	if v, ok := doc["schemaVersion"].(float64); ok && int(v) >= PayloadSchemaVersion {
		if err := json.Unmarshal(raw, &p); err != nil {
			return NewPayload(), false
		}
		p.normalize()
		return p, false
	}

	p = NewPayload()
	if list := firstNonEmpty(doc, strengthsChain); list != nil {
		p.Overall.Strengths = list
	}
	if list := firstNonEmpty(doc, improvementsChain); list != nil {
		p.Overall.Improvements = list
	}
	if list := firstNonEmpty(doc, modificationsChain); list != nil {
		p.Overall.Modifications = list
	}
	for _, c := range Categories {
		p.Categories[c] = legacyCategoryText(doc, c)
	}
	return p, true
}

func legacyCategoryText(doc map[string]any, category string) string {
	candidates := []any{doc[category]}
	if m, ok := doc["categories"].(map[string]any); ok {
		candidates = append(candidates, m[category])
	}
	if m, ok := doc["analysis"].(map[string]any); ok {
		candidates = append(candidates, m[category])
	}
	for _, c := range candidates {
		if s := textOf(c); s != "" {
			return s
		}
	}
	return ""
}
