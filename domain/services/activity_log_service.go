package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

type ActivityLogService interface {
	// Record stores an activity. Failures are logged, not returned.
	Record(ctx context.Context, entry *models.ActivityLog)

	// GetByPhoto returns activity logs for a photo with pagination
	GetByPhoto(ctx context.Context, photoID uuid.UUID, page, limit int) ([]models.ActivityLog, int64, error)

	// GetRecent returns recent activity logs, optionally of one type
	GetRecent(ctx context.Context, activityType models.ActivityType, limit int) ([]models.ActivityLog, error)

	// Cleanup deletes old activity logs
	Cleanup(ctx context.Context, days int) (int64, error)
}
