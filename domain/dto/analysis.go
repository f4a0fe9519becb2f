package dto

import (
	"time"

	"github.com/google/uuid"

	"photocritic/domain/critique"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AnalyzeRequest triggers a critique. ImageURL overrides the stored image
// and is honoured only for the photo owner.
type AnalyzeRequest struct {
	PhotoID  string `json:"photoId" validate:"required,uuid"`
	Persona  string `json:"persona" validate:"required"`
	Language string `json:"language" validate:"omitempty,min=2,max=8"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// AnalysisResponse is a critique plus its storage metadata. ID is nil when
// the result was a transient fallback that was not stored.
type AnalysisResponse struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	PhotoID uuid.UUID  `json:"photoId"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
	critique.Result
	CameraMake  string     `json:"cameraMake,omitempty"`
	CameraModel string     `json:"cameraModel,omitempty"`
	IsHidden    bool       `json:"isHidden"`
	Persisted   bool       `json:"persisted"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// PhotoCard is one photo with its current analysis, as shown in lists
type PhotoCard struct {
	AnalysisID       uuid.UUID               `json:"analysisId"`
	PhotoID          uuid.UUID               `json:"photoId"`
	UserID           *uuid.UUID              `json:"userId,omitempty"`
	ImageURL         string                  `json:"imageUrl,omitempty"`
	ImageData        string                  `json:"imageData,omitempty"`
	OriginalFilename string                  `json:"originalFilename"`
	Width            int                     `json:"width"`
	Height           int                     `json:"height"`
	CameraMake       string                  `json:"cameraMake,omitempty"`
	CameraModel      string                  `json:"cameraModel,omitempty"`
	DetectedGenre    string                  `json:"detectedGenre"`
	Summary          string                  `json:"summary"`
	OverallScore     int                     `json:"overallScore"`
	CategoryScores   critique.CategoryScores `json:"categoryScores"`
	Tags             []string                `json:"tags"`
	Persona          string                  `json:"persona"`
	Language         string                  `json:"language"`
	Strengths        []string                `json:"strengths"`
	Improvements     []string                `json:"improvements"`
	IsHidden         bool                    `json:"isHidden"`
	IsNotEvaluable   bool                    `json:"isNotEvaluable"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// ListCardsQuery is the query string of the card list endpoints
type ListCardsQuery struct {
	UserID        string `query:"userId" validate:"omitempty,uuid"`
	CameraModel   string `query:"-"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
	IncludeHidden bool   `query:"includeHidden"`
}

// Normalize clamps Page to >= 1 and Limit to [1, MaxPageSize].
func (q *ListCardsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
}

func (q *ListCardsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PersonaResponse describes a selectable critic persona
type PersonaResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CleanupResponse struct {
	Deleted      int64 `json:"deleted"`
	KeepPerPhoto int   `json:"keepPerPhoto"`
}
