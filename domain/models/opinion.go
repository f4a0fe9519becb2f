package models

import (
	"time"

	"github.com/google/uuid"
)

// Opinion is a user's reaction to an analysis. The latest row per
// (analysis, user) is the canonical one.
type Opinion struct {
	ID         uuid.UUID  `gorm:"primaryKey;type:uuid"`
	AnalysisID *uuid.UUID `gorm:"type:uuid;index:idx_opinions_analysis_user,priority:1"` // NULL once the analysis is deleted
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_opinions_analysis_user,priority:2"`
	Liked      bool
	Comment    string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User *User `gorm:"foreignKey:UserID"`
}

func (Opinion) TableName() string {
	return "opinions"
}
