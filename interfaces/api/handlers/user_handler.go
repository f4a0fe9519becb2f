package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile godoc
// @Summary Public profile of a user
// @Tags Users
// @Param id path string true "User ID"
// @Router /users/{id} [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	user, err := h.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "get_profile", err)
	}
	return utils.SuccessResponse(c, "Profile retrieved", dto.UserToPublicResponse(user))
}

// UpdateProfile godoc
// @Summary Edit the caller's profile
// @Tags Users
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userCtx, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	var req dto.UpdateProfileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), userCtx.ID, &req)
	if err != nil {
		return handleServiceError(c, "update_profile", err)
	}
	return utils.SuccessResponse(c, "Profile updated", dto.UserToUserResponse(user))
}
