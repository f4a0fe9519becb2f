package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/services"
	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

// handleServiceError maps service sentinels to status codes. Anything
// unrecognised is logged and answered with a generic 500.
func handleServiceError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrUnknownPersona):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, services.ErrForbidden):
		return utils.ForbiddenResponse(c, "You do not own this resource")
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, services.ErrAnalysisInProgress):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Analysis already in progress for this photo", err)
	case errors.Is(err, services.ErrAlreadyExists):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Resource already exists", err)
	case errors.Is(err, utils.ErrInvalidToken),
		errors.Is(err, utils.ErrExpiredToken),
		errors.Is(err, utils.ErrMissingToken):
		return utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrNoImageLocation):
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Photo has no usable image", err)
	}

	logger.Error(logger.CategoryAPI, action, "Request failed", err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
}

// invalidID answers 400 for a malformed path id.
func invalidID(c *fiber.Ctx, err error) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid id", err)
}

// callerID is nil for anonymous requests.
func callerID(c *fiber.Ctx) *uuid.UUID {
	if u := utils.OptionalUser(c); u != nil {
		id := u.ID
		return &id
	}
	return nil
}

// bindAndValidate parses the JSON body into dst and runs the validator. It
// writes the 400 itself and returns ok=false on failure.
func bindAndValidate(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return false, utils.ValidationErrorResponse(c, err)
	}
	return true, nil
}
