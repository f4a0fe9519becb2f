package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"photocritic/domain/critique"
)

// Analysis is one stored critique of a photo. Several may exist per photo;
// list views only surface the newest visible one.
type Analysis struct {
	ID      uuid.UUID  `gorm:"primaryKey;type:uuid"`
	PhotoID uuid.UUID  `gorm:"type:uuid;not null;index:idx_analyses_photo_created,priority:1"`
	UserID  *uuid.UUID `gorm:"type:uuid;index"`

	DetectedGenre  string
	Summary        string `gorm:"type:text"`
	OverallScore   int
	CategoryScores datatypes.JSONType[critique.CategoryScores]
	Tags           datatypes.JSONSlice[string]
	Payload        datatypes.JSON
	Persona        string `gorm:"type:varchar(32)"`
	Language       string `gorm:"type:varchar(8)"`

	CameraMake  string
	CameraModel string `gorm:"index"`

	IsHidden       bool `gorm:"default:false;index"`
	IsNotEvaluable bool `gorm:"default:false"`

	CreatedAt time.Time `gorm:"index:idx_analyses_photo_created,priority:2"`

	// Relations
	Photo *Photo `gorm:"foreignKey:PhotoID"`
}

func (Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) OwnedBy(userID uuid.UUID) bool {
	return a.UserID != nil && *a.UserID == userID
}
