package critique_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"photocritic/domain/critique"
)

// fakeModel answers by operation and records every request.
type fakeModel struct {
	mu       sync.Mutex
	replies  map[string]string
	errs     map[string]error
	block    bool
	requests []critique.ModelRequest
}

func (m *fakeModel) Generate(ctx context.Context, req critique.ModelRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	reply, err := m.replies[req.Operation], m.errs[req.Operation]
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

func (m *fakeModel) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.Operation == op {
			n++
		}
	}
	return n
}

// fakeTranslator prefixes every text with the language and can fail on demand.
type fakeTranslator struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (f *fakeTranslator) Translate(_ context.Context, text, language string, _ critique.Persona) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.failOn != "" && text == f.failOn {
		return "", errors.New("translation backend down")
	}
	return fmt.Sprintf("[%s] %s", language, text), nil
}

var testImage = critique.ImageInput{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"}

func TestAnalyzeParsesReply(t *testing.T) {
	model := &fakeModel{replies: map[string]string{critique.OperationAnalyze: validReply}}
	o := critique.NewOrchestrator(model, nil, critique.Options{})

	var states []critique.State
	res, err := o.Analyze(context.Background(), critique.AnalyzeRequest{
		Image:   testImage,
		Persona: "art-critic",
		OnState: func(s critique.State, _ critique.FallbackReason) { states = append(states, s) },
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.IsNotEvaluable || res.OverallScore != 82 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Persona != "art-critic" || res.Language != "en" {
		t.Errorf("persona/language = %q/%q", res.Persona, res.Language)
	}
	want := []critique.State{critique.StateDispatched, critique.StateAwaitingModel, critique.StateParsed}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	persona, _ := critique.LookupPersona("art-critic")
	if !strings.Contains(model.requests[0].Prompt, persona.Role) {
		t.Error("prompt should carry the persona role")
	}
}

func TestAnalyzeInputErrors(t *testing.T) {
	o := critique.NewOrchestrator(&fakeModel{}, nil, critique.Options{})

	if _, err := o.Analyze(context.Background(), critique.AnalyzeRequest{Image: testImage, Persona: "nobody"}); !errors.Is(err, critique.ErrUnknownPersona) {
		t.Errorf("unknown persona: got %v", err)
	}
	if _, err := o.Analyze(context.Background(), critique.AnalyzeRequest{Persona: "tech-nerd"}); !errors.Is(err, critique.ErrNoImage) {
		t.Errorf("no image: got %v", err)
	}
}

func TestAnalyzeFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		model  *fakeModel
		reason critique.FallbackReason
	}{
		{
			name:   "safety",
			model:  &fakeModel{errs: map[string]error{critique.OperationAnalyze: fmt.Errorf("gemini: %w", critique.ErrSafetyBlocked)}},
			reason: critique.ReasonSafetyBlocked,
		},
		{
			name:   "timeout",
			model:  &fakeModel{block: true},
			reason: critique.ReasonTimeout,
		},
		{
			name:   "unavailable",
			model:  &fakeModel{errs: map[string]error{critique.OperationAnalyze: errors.New("503 overloaded")}},
			reason: critique.ReasonModelUnavailable,
		},
		{
			name:   "garbage",
			model:  &fakeModel{replies: map[string]string{critique.OperationAnalyze: "sorry, no"}},
			reason: critique.ReasonParseFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := critique.NewOrchestrator(tt.model, nil, critique.Options{Timeout: 20 * time.Millisecond})

			var lastReason critique.FallbackReason
			res, err := o.Analyze(context.Background(), critique.AnalyzeRequest{
				Image:    testImage,
				Persona:  "strict-judge",
				Language: "ko",
				OnState: func(s critique.State, r critique.FallbackReason) {
					if s == critique.StateDefaultFallback {
						lastReason = r
					}
				},
			})
			if err != nil {
				t.Fatalf("fallbacks must not error: %v", err)
			}
			assertDefault(t, res, tt.reason)
			if lastReason != tt.reason {
				t.Errorf("state reason = %q", lastReason)
			}
			if res.Persona != "strict-judge" || res.Language != "ko" {
				t.Errorf("fallback lost request context: %+v", res)
			}
		})
	}
}

func TestAnalyzeWithoutModel(t *testing.T) {
	o := critique.NewOrchestrator(nil, nil, critique.Options{})
	res, err := o.Analyze(context.Background(), critique.AnalyzeRequest{Image: testImage, Persona: "tech-nerd"})
	if err != nil {
		t.Fatal(err)
	}
	assertDefault(t, res, critique.ReasonModelUnavailable)
}

func TestAnalyzeTwoStageTranslation(t *testing.T) {
	model := &fakeModel{replies: map[string]string{critique.OperationAnalyze: validReply}}
	tr := &fakeTranslator{}
	o := critique.NewOrchestrator(model, tr, critique.Options{TwoStageTranslation: true, BaseLanguage: "en"})

	res, err := o.Analyze(context.Background(), critique.AnalyzeRequest{Image: testImage, Persona: "friendly-mentor", Language: "ja"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(model.requests[0].Prompt, "English") {
		t.Error("first stage should generate in the base language")
	}
	if res.Summary != "[ja] A calm lake at dawn." {
		t.Errorf("summary = %q", res.Summary)
	}
	if res.OverallScore != 82 || res.CategoryScores.Lighting != 91 {
		t.Error("scores must survive translation unchanged")
	}
	if res.Language != "ja" {
		t.Errorf("language = %q", res.Language)
	}

	// same language as the base skips the second stage
	tr.calls = nil
	if _, err := o.Analyze(context.Background(), critique.AnalyzeRequest{Image: testImage, Persona: "friendly-mentor", Language: "EN"}); err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != 0 {
		t.Errorf("translator called %d times for base language", len(tr.calls))
	}
}

// stalledTranslator blocks until its context ends.
type stalledTranslator struct{}

func (stalledTranslator) Translate(ctx context.Context, _, _ string, _ critique.Persona) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAnalyzeTranslationBoundedByTimeout(t *testing.T) {
	model := &fakeModel{replies: map[string]string{critique.OperationAnalyze: validReply}}
	o := critique.NewOrchestrator(model, stalledTranslator{}, critique.Options{
		Timeout:             50 * time.Millisecond,
		TwoStageTranslation: true,
		BaseLanguage:        "en",
	})

	done := make(chan critique.Result, 1)
	go func() {
		res, _ := o.Analyze(context.Background(), critique.AnalyzeRequest{Image: testImage, Persona: "friendly-mentor", Language: "ja"})
		done <- res
	}()

	select {
	case res := <-done:
		if res.Summary != "A calm lake at dawn." {
			t.Errorf("summary = %q, want the untranslated text", res.Summary)
		}
		if res.IsNotEvaluable || res.Language != "ja" {
			t.Errorf("res = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stalled translation was not cut off by the timeout")
	}
}

func TestTranslateSkipsBlankAndKeepsFailures(t *testing.T) {
	res := critique.ParseResult(validReply)
	res.Analysis.Categories[critique.CategoryColor] = "   "
	tr := &fakeTranslator{failOn: "Classic take."}

	out := critique.Translate(context.Background(), tr, res, "fr", "tech-nerd")

	for _, c := range tr.calls {
		if strings.TrimSpace(c) == "" {
			t.Fatal("blank field sent to translator")
		}
	}
	if got := out.Analysis.Categories[critique.CategoryColor]; got != "   " {
		t.Errorf("blank field changed to %q", got)
	}
	if got := out.Analysis.Categories[critique.CategoryCreativity]; got != "Classic take." {
		t.Errorf("failed field should keep original, got %q", got)
	}
	if got := out.Analysis.Categories[critique.CategoryFocus]; got != "[fr] Sharp foreground." {
		t.Errorf("focus = %q", got)
	}
	if got := out.Analysis.Overall.Modifications[0]; got != "[fr] Straighten by 1 degree" {
		t.Errorf("modification = %q", got)
	}
	if res.Summary != "A calm lake at dawn." {
		t.Error("input result was mutated")
	}
}

func TestTranslateAllBlankMakesNoCalls(t *testing.T) {
	res := critique.DefaultResult(critique.ReasonParseFailed)
	res.Summary = " \n\t"
	tr := &fakeTranslator{}

	critique.Translate(context.Background(), tr, res, "de", "tech-nerd")
	if len(tr.calls) != 0 {
		t.Errorf("expected no translator calls, got %d", len(tr.calls))
	}
}

func TestDetectGenre(t *testing.T) {
	model := &fakeModel{replies: map[string]string{critique.OperationGenre: "```json\n{\"genre\": \"Wild animals\", \"confidence\": 0.8}\n```"}}
	o := critique.NewOrchestrator(model, nil, critique.Options{})

	got := o.DetectGenre(context.Background(), testImage)
	if got.Genre != "wildlife" || got.Confidence != 0.8 {
		t.Errorf("got %+v", got)
	}

	failing := critique.NewOrchestrator(&fakeModel{errs: map[string]error{critique.OperationGenre: errors.New("down")}}, nil, critique.Options{})
	if got := failing.DetectGenre(context.Background(), testImage); got.Genre != critique.GenreGeneral || got.Confidence != 0 {
		t.Errorf("fallback = %+v", got)
	}
	if model.count(critique.OperationGenre) != 1 {
		t.Errorf("genre calls = %d", model.count(critique.OperationGenre))
	}
}
