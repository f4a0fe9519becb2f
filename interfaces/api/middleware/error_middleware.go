package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An error occurred"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error(logger.CategoryAPI, "error_handler", "Request error occurred", err, map[string]interface{}{"status_code": code, "path": c.Path(), "method": c.Method()})
			message = "An error occurred"
		}

		return utils.ErrorResponse(c, code, message, err)
	}
}
