package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/models"
)

type PhotoService interface {
	// Upload decodes, stores and registers a new photo. userID is nil for
	// anonymous uploads.
	Upload(ctx context.Context, userID *uuid.UUID, req *dto.UploadPhotoRequest) (*dto.UploadPhotoResponse, error)

	// GetPhoto hides hidden photos from everyone but the owner.
	GetPhoto(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Photo, error)

	SetVisibility(ctx context.Context, id, userID uuid.UUID, hidden bool) error
}
