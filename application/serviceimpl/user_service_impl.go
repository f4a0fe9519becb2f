package serviceimpl

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"photocritic/domain/dto"
	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
)

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) services.UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get profile")
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.SocialLinks != nil {
		links := datatypes.JSONMap{}
		for k, v := range req.SocialLinks {
			links[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		updates["social_links"] = links
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, id, updates); err != nil {
			return nil, translate(err, "update profile")
		}
	}
	return s.GetProfile(ctx, id)
}
