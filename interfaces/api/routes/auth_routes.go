package routes

import (
	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	"photocritic/pkg/config"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, secret string, rl *config.RateLimitConfig) {
	auth := api.Group("/auth", middleware.AuthRateLimiter(rl))

	auth.Get("/google", h.Auth.GoogleLogin)
	auth.Get("/google/callback", h.Auth.GoogleCallback)

	auth.Get("/me", middleware.Protected(secret), h.Auth.GetCurrentUser)
	auth.Post("/logout", h.Auth.Logout)
}

func SetupUserRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	users := api.Group("/users")

	// /me is registered first so it never parses as an id
	users.Patch("/me", middleware.Protected(secret), h.User.UpdateProfile)
	users.Get("/:id", h.User.GetProfile)
}
