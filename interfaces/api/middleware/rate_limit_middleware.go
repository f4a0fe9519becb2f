package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"photocritic/pkg/config"
	"photocritic/pkg/utils"
)

// RateLimiter limits every API request. It runs ahead of the auth
// middleware, so callers are counted by IP.
func RateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.MaxRequests, cfg.WindowSeconds,
		"Too many requests. Please try again later.")
}

// AuthRateLimiter guards the login and token endpoints.
func AuthRateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.AuthMaxRequests, cfg.AuthWindowSeconds,
		"Too many authentication attempts. Please try again later.")
}

// AnalysisRateLimiter caps critique requests, each of which costs a model
// call. Mount it after Optional or Protected so signed-in users get their
// own bucket.
func AnalysisRateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	return newLimiter(cfg.Enabled, cfg.AnalysisMaxRequests, cfg.AnalysisWindowSeconds,
		"Too many analysis requests. Please try again later.")
}

func newLimiter(enabled bool, max, windowSeconds int, message string) fiber.Handler {
	if !enabled || max <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   time.Duration(windowSeconds) * time.Second,
		KeyGenerator: limiterKey,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, message, nil)
		},
	})
}

func limiterKey(c *fiber.Ctx) string {
	if u := utils.OptionalUser(c); u != nil {
		return "user:" + u.ID.String()
	}
	return "ip:" + c.IP()
}
