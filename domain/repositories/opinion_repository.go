package repositories

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

type OpinionRepository interface {
	// Upsert updates the latest opinion of (analysisID, userID) or creates one.
	Upsert(ctx context.Context, analysisID, userID uuid.UUID, liked bool, comment string) (*models.Opinion, error)
	// ListCanonical returns the latest opinion per user for an analysis.
	ListCanonical(ctx context.Context, analysisID uuid.UUID) ([]models.Opinion, error)
}
