package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/models"
)

type CameraModelService interface {
	List(ctx context.Context, includeInactive bool) ([]models.CameraModel, error)
	Create(ctx context.Context, req *dto.CameraModelRequest) (*models.CameraModel, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.CameraModelRequest) (*models.CameraModel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
