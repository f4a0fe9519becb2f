package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware allows the frontend origin with credentials so the
// auth_token cookie travels. A "*" origin disables credentials.
func CorsMiddleware(frontendURL string) fiber.Handler {
	origins := strings.TrimRight(frontendURL, "/")
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Admin-Token",
		AllowCredentials: origins != "*",
		MaxAge:           3600,
	})
}
