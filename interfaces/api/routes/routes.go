package routes

import (
	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	websocketHandler "photocritic/interfaces/api/websocket"
	"photocritic/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, ws *websocketHandler.WebSocketHandler, cfg *config.Config) {
	SetupHealthRoutes(app, h.Health, cfg.App.Name)

	api := app.Group("/api/v1", middleware.RateLimiter(&cfg.RateLimit))

	secret := cfg.JWT.Secret
	SetupAuthRoutes(api, h, secret, &cfg.RateLimit)
	SetupUserRoutes(api, h, secret)
	SetupPhotoRoutes(api, h, secret)
	SetupAnalysisRoutes(api, h, secret, &cfg.RateLimit)
	SetupCameraModelRoutes(api, h, secret)
	SetupActivityLogRoutes(api, h, secret)
	SetupAdminRoutes(api, h, cfg)

	if ws != nil {
		SetupWebSocketRoutes(app, ws, secret)
	}
}
