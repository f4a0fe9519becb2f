package repositories

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

type CameraModelRepository interface {
	Create(ctx context.Context, cm *models.CameraModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CameraModel, error)
	List(ctx context.Context, activeOnly bool) ([]models.CameraModel, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	// EnsureExists registers (manufacturer, model) if it is not in the catalog yet.
	EnsureExists(ctx context.Context, manufacturer, model string) error
}
