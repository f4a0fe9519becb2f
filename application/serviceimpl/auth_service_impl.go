package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

const providerGoogle = "google"

// GoogleIdentity signs users in with Google.
type GoogleIdentity interface {
	GetAuthURL(state string) string
	Identify(ctx context.Context, code string) (*services.GoogleUserInfo, error)
}

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	google    GoogleIdentity
	jwtSecret string
	now       func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	google GoogleIdentity,
	jwtSecret string,
) services.AuthService {
	return &AuthServiceImpl{
		userRepo:  userRepo,
		google:    google,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

func (s *AuthServiceImpl) GetGoogleAuthURL(state string) string {
	return s.google.GetAuthURL(state)
}

func (s *AuthServiceImpl) HandleGoogleCallback(ctx context.Context, code string) (string, *models.User, error) {
	info, err := s.google.Identify(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to identify google user: %w", err)
	}
	if info.Email == "" {
		return "", nil, fmt.Errorf("google account has no email: %w", services.ErrInvalidInput)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	now := s.now()
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		logger.AuthError("update_last_login", "Failed to update last login", err, map[string]interface{}{"user_id": user.ID.String()})
	} else {
		user.LastLoginAt = &now
	}

	token, err := utils.GenerateToken(utils.UserContext{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	}, s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Auth("google_login", "User signed in", map[string]interface{}{"user_id": user.ID.String()})
	return token, user, nil
}

func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	userCtx, err := utils.ValidateTokenStringToUUID(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userCtx.ID)
	if err != nil {
		return nil, translate(err, "get current user")
	}
	return user, nil
}

func (s *AuthServiceImpl) findOrCreateGoogleUser(ctx context.Context, info *services.GoogleUserInfo) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, providerGoogle, info.ID)
	if err == nil {
		if info.Picture != "" && user.Avatar != info.Picture {
			if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"avatar": info.Picture}); err == nil {
				user.Avatar = info.Picture
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// an account created before the provider link keeps its id
	user, err = s.userRepo.GetByEmail(ctx, info.Email)
	if err == nil {
		updates := map[string]interface{}{
			"provider":    providerGoogle,
			"external_id": info.ID,
		}
		if user.Avatar == "" && info.Picture != "" {
			updates["avatar"] = info.Picture
		}
		if err := s.userRepo.Update(ctx, user.ID, updates); err != nil {
			return nil, err
		}
		user.Provider = providerGoogle
		user.ExternalID = info.ID
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newUser := &models.User{
		Provider:    providerGoogle,
		ExternalID:  info.ID,
		Email:       info.Email,
		DisplayName: displayName(info),
		Avatar:      info.Picture,
		Role:        models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	logger.Auth("user_created", "New user registered", map[string]interface{}{"user_id": newUser.ID.String()})
	return newUser, nil
}

func displayName(info *services.GoogleUserInfo) string {
	if name := strings.TrimSpace(info.Name); name != "" {
		return name
	}
	return strings.Split(info.Email, "@")[0]
}
