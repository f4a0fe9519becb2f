package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/dto"
)

type AnalysisService interface {
	// Analyze runs one critique of a photo. Concurrent calls for the same
	// photo fail with ErrAnalysisInProgress.
	Analyze(ctx context.Context, callerID *uuid.UUID, req *dto.AnalyzeRequest) (*dto.AnalysisResponse, error)

	GetAnalysis(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*dto.AnalysisResponse, error)

	// ListWithPhotos returns one card per photo. Read errors degrade to an
	// empty page.
	ListWithPhotos(ctx context.Context, callerID *uuid.UUID, query *dto.ListCardsQuery) ([]dto.PhotoCard, int64)

	SetVisibility(ctx context.Context, id, userID uuid.UUID, hidden bool) error
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// CleanupRedundant keeps the newest keepPerPhoto visible analyses of each photo.
	CleanupRedundant(ctx context.Context, keepPerPhoto int) (int64, error)

	// IsProcessing reports whether an analysis of photoID is running.
	IsProcessing(ctx context.Context, photoID uuid.UUID) bool
}
