package routes

import (
	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
)

func SetupActivityLogRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	if h.ActivityLog == nil {
		return
	}

	activity := api.Group("/activity-logs", middleware.Protected(secret))

	activity.Get("/types", h.ActivityLog.GetActivityTypes)
	activity.Get("/recent", middleware.AdminOnly(), h.ActivityLog.GetRecentActivityLogs)
	activity.Get("/", h.ActivityLog.GetActivityLogs)
}
