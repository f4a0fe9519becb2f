package repositories

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

type ActivityLogRepository interface {
	// Create a new activity log
	Create(ctx context.Context, log *models.ActivityLog) error

	// Get logs of one photo with pagination
	GetByPhoto(ctx context.Context, photoID uuid.UUID, offset, limit int) ([]models.ActivityLog, int64, error)

	// Get recent logs, optionally of one type (for admin)
	GetRecent(ctx context.Context, activityType models.ActivityType, limit int) ([]models.ActivityLog, error)

	// Delete old logs (cleanup)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
