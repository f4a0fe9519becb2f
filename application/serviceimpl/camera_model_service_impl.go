package serviceimpl

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
)

type CameraModelServiceImpl struct {
	repo repositories.CameraModelRepository
}

func NewCameraModelService(repo repositories.CameraModelRepository) services.CameraModelService {
	return &CameraModelServiceImpl{repo: repo}
}

func (s *CameraModelServiceImpl) List(ctx context.Context, includeInactive bool) ([]models.CameraModel, error) {
	list, err := s.repo.List(ctx, !includeInactive)
	if err != nil {
		return nil, translate(err, "list camera models")
	}
	return list, nil
}

func (s *CameraModelServiceImpl) Create(ctx context.Context, req *dto.CameraModelRequest) (*models.CameraModel, error) {
	cm := &models.CameraModel{
		Manufacturer: strings.TrimSpace(req.Manufacturer),
		Model:        strings.TrimSpace(req.Model),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Description:  req.Description,
		ReleaseYear:  req.ReleaseYear,
		IsActive:     true,
	}
	if cm.DisplayName == "" {
		cm.DisplayName = cm.Manufacturer + " " + cm.Model
	}
	if err := s.repo.Create(ctx, cm); err != nil {
		return nil, translate(err, "create camera model")
	}
	// the column default would override a false on insert
	if req.IsActive != nil && !*req.IsActive {
		if err := s.repo.Update(ctx, cm.ID, map[string]interface{}{"is_active": false}); err != nil {
			return nil, translate(err, "create camera model")
		}
		cm.IsActive = false
	}
	return cm, nil
}

func (s *CameraModelServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.CameraModelRequest) (*models.CameraModel, error) {
	manufacturer, model := strings.TrimSpace(req.Manufacturer), strings.TrimSpace(req.Model)
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = manufacturer + " " + model
	}
	updates := map[string]interface{}{
		"manufacturer": manufacturer,
		"model":        model,
		"display_name": displayName,
		"description":  req.Description,
		"release_year": req.ReleaseYear,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, translate(err, "update camera model")
	}
	cm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get camera model")
	}
	return cm, nil
}

func (s *CameraModelServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.Delete(ctx, id), "delete camera model")
}
