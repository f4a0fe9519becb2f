package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
	"photocritic/pkg/logger"
)

type ActivityLogServiceImpl struct {
	activityLogRepo repositories.ActivityLogRepository
}

func NewActivityLogService(activityLogRepo repositories.ActivityLogRepository) services.ActivityLogService {
	return &ActivityLogServiceImpl{
		activityLogRepo: activityLogRepo,
	}
}

func (s *ActivityLogServiceImpl) Record(ctx context.Context, entry *models.ActivityLog) {
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		logger.DBError("activity_log_create", "Failed to record activity", err, map[string]interface{}{
			"type": string(entry.ActivityType),
		})
	}
}

func (s *ActivityLogServiceImpl) GetByPhoto(ctx context.Context, photoID uuid.UUID, page, limit int) ([]models.ActivityLog, int64, error) {
	// page is 1-based
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.activityLogRepo.GetByPhoto(ctx, photoID, offset, limit)
}

func (s *ActivityLogServiceImpl) GetRecent(ctx context.Context, activityType models.ActivityType, limit int) ([]models.ActivityLog, error) {
	return s.activityLogRepo.GetRecent(ctx, activityType, limit)
}

func (s *ActivityLogServiceImpl) Cleanup(ctx context.Context, days int) (int64, error) {
	return s.activityLogRepo.DeleteOlderThan(ctx, days)
}
