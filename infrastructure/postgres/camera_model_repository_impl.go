package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
)

type CameraModelRepositoryImpl struct {
	db *gorm.DB
}

func NewCameraModelRepository(db *gorm.DB) repositories.CameraModelRepository {
	return &CameraModelRepositoryImpl{db: db}
}

func (r *CameraModelRepositoryImpl) Create(ctx context.Context, cm *models.CameraModel) error {
	return r.db.WithContext(ctx).Create(cm).Error
}

func (r *CameraModelRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.CameraModel, error) {
	var cm models.CameraModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cm).Error
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

func (r *CameraModelRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]models.CameraModel, error) {
	var list []models.CameraModel
	query := r.db.WithContext(ctx).Model(&models.CameraModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("manufacturer ASC").Order("model ASC").Find(&list).Error
	return list, err
}

func (r *CameraModelRepositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.CameraModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CameraModelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CameraModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CameraModelRepositoryImpl) EnsureExists(ctx context.Context, manufacturer, model string) error {
	manufacturer = strings.TrimSpace(manufacturer)
	model = strings.TrimSpace(model)
	if model == "" {
		return nil
	}

	cm := models.CameraModel{
		Manufacturer: manufacturer,
		Model:        model,
		DisplayName:  strings.TrimSpace(manufacturer + " " + model),
		IsActive:     true,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "manufacturer"}, {Name: "model"}},
			DoNothing: true,
		}).
		Create(&cm).Error
}
