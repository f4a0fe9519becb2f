package critique

const (
	CategoryComposition = "composition"
	CategoryLighting    = "lighting"
	CategoryColor       = "color"
	CategoryFocus       = "focus"
	CategoryCreativity  = "creativity"
)

// Categories is the fixed, ordered set of scored categories.
var Categories = []string{
	CategoryComposition, CategoryLighting, CategoryColor, CategoryFocus, CategoryCreativity,
}

// CategoryScores holds one 0-100 score per category. Every key is always
// serialized, zero included.
type CategoryScores struct {
	Composition int `json:"composition"`
	Lighting    int `json:"lighting"`
	Color       int `json:"color"`
	Focus       int `json:"focus"`
	Creativity  int `json:"creativity"`
}

func (s *CategoryScores) set(category string, v int) {
	switch category {
	case CategoryComposition:
		s.Composition = v
	case CategoryLighting:
		s.Lighting = v
	case CategoryColor:
		s.Color = v
	case CategoryFocus:
		s.Focus = v
	case CategoryCreativity:
		s.Creativity = v
	}
}

// FallbackReason says why a default result was produced instead of a parsed one.
type FallbackReason string

const (
	ReasonParseFailed      FallbackReason = "parse_failed"
	ReasonSafetyBlocked    FallbackReason = "safety_blocked"
	ReasonTimeout          FallbackReason = "timeout"
	ReasonModelUnavailable FallbackReason = "model_unavailable"
	ReasonModelDeclined    FallbackReason = "model_declined"
)

var fallbackMessages = map[FallbackReason]string{
	ReasonParseFailed:      "The critique could not be read. Please try again.",
	ReasonSafetyBlocked:    "This image cannot be evaluated because it was flagged by the content policy.",
	ReasonTimeout:          "The analysis took too long. Please try again.",
	ReasonModelUnavailable: "The analysis service is temporarily unavailable. Please try again later.",
	ReasonModelDeclined:    "This image could not be evaluated as a photograph.",
}

// Result is a structurally valid critique. Fallbacks share the same shape.
type Result struct {
	DetectedGenre  string         `json:"detectedGenre"`
	Summary        string         `json:"summary"`
	OverallScore   int            `json:"overallScore"`
	CategoryScores CategoryScores `json:"categoryScores"`
	Tags           []string       `json:"tags"`
	Analysis       Payload        `json:"analysis"`
	IsNotEvaluable bool           `json:"isNotEvaluable"`
	Reason         FallbackReason `json:"reason,omitempty"`
	Persona        string         `json:"persona,omitempty"`
	Language       string         `json:"language,omitempty"`
}

// Persistable reports whether the result should be stored as an analysis.
// Transport-level fallbacks are not stored so a retry starts clean.
func (r Result) Persistable() bool {
	return !r.IsNotEvaluable || r.Reason == ReasonModelDeclined
}

// DefaultResult builds the not-evaluable result for reason.
func DefaultResult(reason FallbackReason) Result {
	return Result{
		DetectedGenre:  GenreGeneral,
		Summary:        fallbackMessages[reason],
		Tags:           []string{},
		Analysis:       NewPayload(),
		IsNotEvaluable: true,
		Reason:         reason,
	}
}

// State is a step of one analysis request.
type State string

const (
	StateDispatched      State = "dispatched"
	StateAwaitingModel   State = "awaiting_model"
	StateParsed          State = "parsed"
	StateDefaultFallback State = "default_fallback"
	StatePersisted       State = "persisted"
)
