// Package critique turns a photo plus a persona into a structured critique.
// It owns prompt construction, reply parsing, fallbacks and translation, and
// talks to the generative model only through the Model interface.
package critique

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrSafetyBlocked is returned by a Model when the provider refused the
	// request on policy grounds.
	ErrSafetyBlocked = errors.New("critique: blocked by safety policy")
	// ErrUnknownPersona is returned for a persona key that is not registered.
	ErrUnknownPersona = errors.New("critique: unknown persona")
	// ErrNoImage is returned when neither image bytes nor a URL were given.
	ErrNoImage = errors.New("critique: no image data or URL")

	errEmptyTranslation = errors.New("critique: empty translation")
)

// Model operations, used as metric labels.
const (
	OperationAnalyze   = "analyze"
	OperationTranslate = "translate"
	OperationGenre     = "genre"
)

// ImageInput is either inline bytes or a fetchable URL.
type ImageInput struct {
	Data     []byte
	MIMEType string
	URL      string
}

// IsInline reports whether the image travels as bytes.
func (i ImageInput) IsInline() bool {
	return len(i.Data) > 0
}

func (i ImageInput) empty() bool {
	return len(i.Data) == 0 && strings.TrimSpace(i.URL) == ""
}

// ModelRequest is one prompt, optionally with an image.
type ModelRequest struct {
	Operation    string
	Prompt       string
	Image        *ImageInput
	JSONResponse bool
}

// Model is the generative model. Implementations return ErrSafetyBlocked
// (possibly wrapped) for policy refusals.
type Model interface {
	Generate(ctx context.Context, req ModelRequest) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	Timeout             time.Duration
	TwoStageTranslation bool
	BaseLanguage        string
}

// Orchestrator runs one critique end to end.
type Orchestrator struct {
	model      Model
	translator Translator
	opts       Options
}

func NewOrchestrator(model Model, translator Translator, opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.BaseLanguage == "" {
		opts.BaseLanguage = "en"
	}
	if translator == nil && model != nil {
		translator = ModelTranslator{Model: model}
	}
	return &Orchestrator{model: model, translator: translator, opts: opts}
}

// AnalyzeRequest is the input of one critique.
type AnalyzeRequest struct {
	Image    ImageInput
	Persona  string
	Language string
	Genre    string
	// OnState, when set, observes each state transition.
	OnState func(state State, reason FallbackReason)
}

// Analyze returns a structurally valid Result for every model outcome.
// Errors are reserved for invalid input.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	persona, ok := LookupPersona(req.Persona)
	if !ok {
		return Result{}, ErrUnknownPersona
	}
	if req.Image.empty() {
		return Result{}, ErrNoImage
	}
	notify := req.OnState
	if notify == nil {
		notify = func(State, FallbackReason) {}
	}

	language := req.Language
	if language == "" {
		language = o.opts.BaseLanguage
	}
	genLanguage := language
	twoStage := o.opts.TwoStageTranslation && !strings.EqualFold(language, o.opts.BaseLanguage)
	if twoStage {
		genLanguage = o.opts.BaseLanguage
	}

	notify(StateDispatched, "")
	res := o.generate(ctx, persona, req, genLanguage, notify)
	if twoStage && !res.IsNotEvaluable {
		// untranslated fields keep their base-language text when the deadline hits
		translateCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
		res = Translate(translateCtx, o.translator, res, language, persona.Key)
		cancel()
	}

	res.Persona = persona.Key
	res.Language = language
	if res.IsNotEvaluable {
		notify(StateDefaultFallback, res.Reason)
	} else {
		notify(StateParsed, "")
	}
	return res, nil
}

func (o *Orchestrator) generate(ctx context.Context, persona Persona, req AnalyzeRequest, language string, notify func(State, FallbackReason)) Result {
	if o.model == nil {
		return DefaultResult(ReasonModelUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	image := req.Image
	notify(StateAwaitingModel, "")
	text, err := o.model.Generate(callCtx, ModelRequest{
		Operation:    OperationAnalyze,
		Prompt:       BuildAnalysisPrompt(persona, req.Genre, language),
		Image:        &image,
		JSONResponse: true,
	})
	if err != nil {
		return DefaultResult(classifyModelError(callCtx, err))
	}

	res := ParseResult(text)
	if !res.IsNotEvaluable && req.Genre != "" && res.DetectedGenre == GenreGeneral {
		res.DetectedGenre = NormalizeGenre(req.Genre)
	}
	return res
}

func classifyModelError(ctx context.Context, err error) FallbackReason {
	switch {
	case errors.Is(err, ErrSafetyBlocked):
		return ReasonSafetyBlocked
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonModelUnavailable
	}
}

// GenreGuess is the outcome of DetectGenre.
type GenreGuess struct {
	Genre      string  `json:"genre"`
	Confidence float64 `json:"confidence"`
}

// DetectGenre classifies the photo. Any failure yields the general genre
// with zero confidence.
func (o *Orchestrator) DetectGenre(ctx context.Context, image ImageInput) GenreGuess {
	fallback := GenreGuess{Genre: GenreGeneral}
	if o.model == nil || image.empty() {
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	text, err := o.model.Generate(callCtx, ModelRequest{
		Operation:    OperationGenre,
		Prompt:       BuildGenrePrompt(),
		Image:        &image,
		JSONResponse: true,
	})
	if err != nil {
		return fallback
	}
	span, err := ExtractJSONObject(text)
	if err != nil {
		return fallback
	}
	var guess GenreGuess
	if err := json.Unmarshal([]byte(span), &guess); err != nil {
		return fallback
	}
	guess.Genre = NormalizeGenre(guess.Genre)
	if guess.Confidence < 0 || guess.Confidence > 1 {
		guess.Confidence = 0
	}
	return guess
}
