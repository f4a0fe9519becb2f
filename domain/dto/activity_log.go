package dto

import (
	"time"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

// ActivityLogResponse represents an activity log entry
type ActivityLogResponse struct {
	ID           uuid.UUID              `json:"id"`
	UserID       *uuid.UUID             `json:"userId,omitempty"`
	PhotoID      *uuid.UUID             `json:"photoId,omitempty"`
	ActivityType string                 `json:"activityType"`
	Message      string                 `json:"message"`
	Details      models.ActivityDetails `json:"details"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// ActivityLogToResponse converts a model to response DTO
func ActivityLogToResponse(log *models.ActivityLog) *ActivityLogResponse {
	return &ActivityLogResponse{
		ID:           log.ID,
		UserID:       log.UserID,
		PhotoID:      log.PhotoID,
		ActivityType: string(log.ActivityType),
		Message:      log.Message,
		Details:      log.Details.Data(),
		CreatedAt:    log.CreatedAt,
	}
}

// ActivityLogsToResponse converts a slice of models to response DTOs
func ActivityLogsToResponse(logs []models.ActivityLog) []*ActivityLogResponse {
	result := make([]*ActivityLogResponse, len(logs))
	for i := range logs {
		result[i] = ActivityLogToResponse(&logs[i])
	}
	return result
}
