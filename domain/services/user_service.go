package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/models"
)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error)
}
