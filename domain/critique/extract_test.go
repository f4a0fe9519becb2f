package critique_test

import (
	"reflect"
	"testing"

	"photocritic/domain/critique"
)

func TestExtractStrengthsEquivalentShapes(t *testing.T) {
	top := []byte(`{"overall": {"strengths": ["Leading lines", "Golden hour"]}}`)
	nested := []byte(`{"analysis": {"overall": {"strengths": ["Leading lines", "Golden hour"]}}}`)
	overview := []byte(`{"overall": {"overview": {"pros": ["Leading lines", "Golden hour"]}}}`)

	want := []string{"Leading lines", "Golden hour"}
	for name, raw := range map[string][]byte{"top": top, "nested": nested, "overview": overview} {
		if got := critique.ExtractStrengths(raw); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestExtractStrengthsPriority(t *testing.T) {
	raw := []byte(`{
		"overall": {"strengths": [], "overview": {"pros": ["from overview"]}},
		"analysis": {"overall": {"strengths": ["from analysis"]}}
	}`)
	got := critique.ExtractStrengths(raw)
	if len(got) != 1 || got[0] != "from overview" {
		t.Fatalf("empty first location should fall through to overview, got %v", got)
	}
}

func TestExtractFallsBackToPlaceholders(t *testing.T) {
	for name, raw := range map[string][]byte{
		"malformed":  []byte(`{"overall": {"strengths": [`),
		"empty":      nil,
		"no lists":   []byte(`{"overall": {"summary": "fine"}}`),
		"wrong type": []byte(`{"overall": {"strengths": 42}}`),
	} {
		if got := critique.ExtractStrengths(raw); !reflect.DeepEqual(got, critique.PlaceholderStrengths) {
			t.Errorf("%s strengths: got %v", name, got)
		}
		if got := critique.ExtractImprovements(raw); !reflect.DeepEqual(got, critique.PlaceholderImprovements) {
			t.Errorf("%s improvements: got %v", name, got)
		}
	}
}

func TestExtractPlaceholderIsACopy(t *testing.T) {
	got := critique.ExtractStrengths(nil)
	got[0] = "mutated"
	if critique.PlaceholderStrengths[0] == "mutated" {
		t.Fatal("caller mutated the shared placeholder list")
	}
}

func TestDecodePayloadMigratesLegacy(t *testing.T) {
	legacy := []byte(`{
		"composition": "Centered subject",
		"analysis": {"lighting": {"text": "Harsh noon sun"}, "overall": {"strengths": ["Sharp"]}},
		"overall": {"overview": {"cons": ["Busy background"]}, "suggestions": ["Crop left"]}
	}`)

	p, migrated := critique.DecodePayload(legacy)
	if !migrated {
		t.Fatal("legacy payload should report migrated")
	}
	if p.SchemaVersion != critique.PayloadSchemaVersion {
		t.Errorf("schemaVersion = %d", p.SchemaVersion)
	}
	if p.Categories["composition"] != "Centered subject" || p.Categories["lighting"] != "Harsh noon sun" {
		t.Errorf("categories = %v", p.Categories)
	}
	if _, ok := p.Categories["creativity"]; !ok {
		t.Error("every category key should be present")
	}
	if !reflect.DeepEqual(p.Overall.Strengths, []string{"Sharp"}) {
		t.Errorf("strengths = %v", p.Overall.Strengths)
	}
	if !reflect.DeepEqual(p.Overall.Improvements, []string{"Busy background"}) {
		t.Errorf("improvements = %v", p.Overall.Improvements)
	}
	if !reflect.DeepEqual(p.Overall.Modifications, []string{"Crop left"}) {
		t.Errorf("modifications = %v", p.Overall.Modifications)
	}

	raw, err := p.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	again, migrated := critique.DecodePayload(raw)
	if migrated {
		t.Error("current payload should not migrate again")
	}
	if !reflect.DeepEqual(again, p) {
		t.Errorf("round trip changed payload: %+v vs %+v", again, p)
	}
}

func TestDecodePayloadMalformedIsNotMigrated(t *testing.T) {
	p, migrated := critique.DecodePayload([]byte("not-json"))
	if migrated {
		t.Error("malformed payload must not be rewritten")
	}
	if len(p.Overall.Strengths) != 0 || len(p.Categories) != len(critique.Categories) {
		t.Errorf("expected empty payload, got %+v", p)
	}
}
