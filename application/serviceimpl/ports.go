package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/critique"
	"photocritic/domain/models"
)

// ImageStore persists image bytes and resolves them to a location.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) models.ImageLocation
	Load(ctx context.Context, loc models.ImageLocation) ([]byte, error)
}

// Critic produces critiques. *critique.Orchestrator implements it.
type Critic interface {
	Analyze(ctx context.Context, req critique.AnalyzeRequest) (critique.Result, error)
	DetectGenre(ctx context.Context, image critique.ImageInput) critique.GenreGuess
}

// StatusPublisher is told about every analysis state transition.
type StatusPublisher interface {
	PublishStatus(photoID uuid.UUID, state critique.State, reason critique.FallbackReason)
}

type noopPublisher struct{}

func (noopPublisher) PublishStatus(uuid.UUID, critique.State, critique.FallbackReason) {}
