package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"

	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

// tokenFrom reads the bearer header first, then the auth_token cookie set by
// the OAuth callback.
func tokenFrom(c *fiber.Ctx) string {
	if token := utils.ExtractTokenFromHeader(c.Get("Authorization")); token != "" {
		return token
	}
	return c.Cookies("auth_token")
}

// Protected middleware validates JWT tokens and sets user context
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization")
		}

		userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret)
		if err != nil {
			logger.Warn(logger.CategoryAuth, "token_rejected", "Token validation failed", map[string]interface{}{
				"path":  c.Path(),
				"error": err.Error(),
			})
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			case errors.Is(err, utils.ErrInvalidToken):
				return utils.UnauthorizedResponse(c, "Invalid token")
			default:
				return utils.UnauthorizedResponse(c, "Token validation failed")
			}
		}

		c.Locals("user", userCtx)
		return c.Next()
	}
}

// Optional sets the user context when a valid token is present and lets
// anonymous requests through otherwise.
func Optional(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFrom(c); token != "" {
			if userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret); err == nil {
				c.Locals("user", userCtx)
			}
		}
		return c.Next()
	}
}

// OptionalWithQueryToken also accepts ?token=, for WebSocket handshakes that
// cannot send headers.
func OptionalWithQueryToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			token = c.Query("token")
		}
		if token != "" {
			if userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret); err == nil {
				c.Locals("user", userCtx)
			}
		}
		return c.Next()
	}
}

// RequireRole middleware checks if user has specific role
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := utils.GetUserFromContext(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}
		if user.Role != role {
			return utils.ForbiddenResponse(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// AdminOnly must run after Protected.
func AdminOnly() fiber.Handler {
	return RequireRole("admin")
}

// AdminToken guards operator endpoints with a shared token sent as
// X-Admin-Token or ?token=.
func AdminToken(adminToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if token == "" {
			token = c.Query("token")
		}
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			logger.Warn(logger.CategoryAuth, "admin_token_rejected", "Invalid admin token", map[string]interface{}{
				"ip":   c.IP(),
				"path": c.Path(),
			})
			return utils.UnauthorizedResponse(c, "Invalid admin token")
		}
		return c.Next()
	}
}
