package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/models"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type ActivityLogHandler struct {
	activityLogService services.ActivityLogService
	photoService       services.PhotoService
}

func NewActivityLogHandler(
	activityLogService services.ActivityLogService,
	photoService services.PhotoService,
) *ActivityLogHandler {
	return &ActivityLogHandler{
		activityLogService: activityLogService,
		photoService:       photoService,
	}
}

// GetActivityLogs returns the audit trail of one photo
// @Summary Get activity logs for a photo
// @Tags Activity
// @Security BearerAuth
// @Param photoId query string true "Photo ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Router /activity-logs [get]
func (h *ActivityLogHandler) GetActivityLogs(c *fiber.Ctx) error {
	userCtx, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	photoID, err := uuid.Parse(c.Query("photoId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "photoId is required", err)
	}

	photo, err := h.photoService.GetPhoto(c.UserContext(), photoID, &userCtx.ID)
	if err != nil {
		return handleServiceError(c, "activity_logs", err)
	}
	owner := photo.UserID != nil && *photo.UserID == userCtx.ID
	if !owner && !userCtx.IsAdmin() {
		return utils.ForbiddenResponse(c, "Access denied")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 100
	}

	logs, total, err := h.activityLogService.GetByPhoto(c.UserContext(), photoID, page, limit)
	if err != nil {
		return handleServiceError(c, "activity_logs", err)
	}
	return utils.PaginatedResponse(c, "Activity logs retrieved", dto.ActivityLogsToResponse(logs), utils.NewPagination(page, limit, total))
}

// GetRecentActivityLogs returns the latest activity across all photos (for admin)
// @Summary Get recent activity logs
// @Tags Activity
// @Security BearerAuth
// @Param type query string false "Filter by activity type"
// @Param limit query int false "Number of logs" default(50)
// @Router /activity-logs/recent [get]
func (h *ActivityLogHandler) GetRecentActivityLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 100
	}

	logs, err := h.activityLogService.GetRecent(c.UserContext(), models.ActivityType(c.Query("type")), limit)
	if err != nil {
		return handleServiceError(c, "recent_activity_logs", err)
	}
	return utils.SuccessResponse(c, "Activity logs retrieved", dto.ActivityLogsToResponse(logs))
}

// GetActivityTypes returns all available activity types
// @Summary Get activity types
// @Tags Activity
// @Router /activity-logs/types [get]
func (h *ActivityLogHandler) GetActivityTypes(c *fiber.Ctx) error {
	types := []fiber.Map{
		{"value": models.ActivityPhotoUploaded, "label": "Photo uploaded", "category": "photo"},
		{"value": models.ActivityPhotoHidden, "label": "Photo visibility changed", "category": "photo"},
		{"value": models.ActivityAnalysisCompleted, "label": "Analysis completed", "category": "analysis"},
		{"value": models.ActivityAnalysisFallback, "label": "Analysis fell back", "category": "analysis"},
		{"value": models.ActivityAnalysisHidden, "label": "Analysis visibility changed", "category": "analysis"},
		{"value": models.ActivityAnalysisDeleted, "label": "Analysis deleted", "category": "analysis"},
		{"value": models.ActivityCleanupRun, "label": "Cleanup run", "category": "maintenance"},
	}
	return utils.SuccessResponse(c, "Activity types retrieved", types)
}
