package routes

import (
	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	"photocritic/pkg/config"
)

// SetupAdminRoutes registers the maintenance endpoints. Log inspection uses
// the operator token; cleanup needs an admin session.
func SetupAdminRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	admin := api.Group("/admin")

	adminToken := cfg.Admin.Token
	if adminToken == "" {
		adminToken = cfg.JWT.Secret
	}
	logs := admin.Group("/logs", middleware.AdminToken(adminToken))
	logs.Get("/", h.Log.GetLogs)
	logs.Get("/files", h.Log.GetLogFiles)
	logs.Get("/stats", h.Log.GetLogStats)

	admin.Post("/analyses/cleanup", middleware.Protected(cfg.JWT.Secret), middleware.AdminOnly(), h.Analysis.Cleanup)
}
