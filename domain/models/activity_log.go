package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityType string

const (
	// Analysis activities
	ActivityAnalysisCompleted ActivityType = "analysis_completed"
	ActivityAnalysisFallback  ActivityType = "analysis_fallback"
	ActivityAnalysisDeleted   ActivityType = "analysis_deleted"
	ActivityAnalysisHidden    ActivityType = "analysis_visibility"

	// Photo activities
	ActivityPhotoUploaded ActivityType = "photo_uploaded"
	ActivityPhotoHidden   ActivityType = "photo_visibility"

	// Maintenance
	ActivityCleanupRun ActivityType = "cleanup_run"
)

// ActivityLog is an audit trail of analysis and photo events
type ActivityLog struct {
	ID           uuid.UUID    `gorm:"primaryKey;type:uuid"`
	UserID       *uuid.UUID   `gorm:"type:uuid;index"`
	PhotoID      *uuid.UUID   `gorm:"type:uuid;index"`
	ActivityType ActivityType `gorm:"type:varchar(50);not null;index"`
	Message      string       `gorm:"type:text"`
	Details      datatypes.JSONType[ActivityDetails]
	CreatedAt    time.Time `gorm:"index"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// ActivityDetails holds the optional structured part of an activity
type ActivityDetails struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	Persona    string `json:"persona,omitempty"`
	Language   string `json:"language,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Score      int    `json:"score,omitempty"`
	Hidden     *bool  `json:"hidden,omitempty"`

	Count      int64 `json:"count,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}
