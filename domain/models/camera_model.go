package models

import (
	"time"

	"github.com/google/uuid"
)

type CameraModel struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Manufacturer string    `gorm:"not null;uniqueIndex:idx_camera_models_make_model"`
	Model        string    `gorm:"not null;uniqueIndex:idx_camera_models_make_model"`
	DisplayName  string
	Description  string `gorm:"type:text"`
	ReleaseYear  int
	IsActive     bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CameraModel) TableName() string {
	return "camera_models"
}
