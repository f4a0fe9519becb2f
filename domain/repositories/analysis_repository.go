package repositories

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

// AnalysisFilter selects the current analysis per photo for list views.
// Empty fields do not filter.
type AnalysisFilter struct {
	UserID        *uuid.UUID
	CameraModel   string
	IncludeHidden bool
	Offset        int
	Limit         int
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	GetLatestForPhoto(ctx context.Context, photoID uuid.UUID) (*models.Analysis, error)

	// ListCurrent returns the newest analysis of each photo matching filter,
	// with Photo preloaded, ordered by created_at DESC, id DESC. total counts
	// the same rows before paging.
	ListCurrent(ctx context.Context, filter AnalysisFilter) ([]models.Analysis, int64, error)

	UpdateVisibility(ctx context.Context, id uuid.UUID, hidden bool) error
	UpdatePayload(ctx context.Context, id uuid.UUID, payload []byte) error

	// Delete removes the analysis and detaches its opinions in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteRedundant keeps the newest keepPerPhoto visible rows of every
	// photo and deletes older visible rows. Hidden rows are never touched.
	DeleteRedundant(ctx context.Context, keepPerPhoto int) (int64, error)
}
