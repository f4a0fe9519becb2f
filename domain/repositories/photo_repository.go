package repositories

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, hidden bool) error
	UpdateGenre(ctx context.Context, id uuid.UUID, genre string) error
	GetByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Photo, int64, error)
}
