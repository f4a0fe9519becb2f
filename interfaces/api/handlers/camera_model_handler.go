package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type CameraModelHandler struct {
	cameraModelService services.CameraModelService
}

func NewCameraModelHandler(cameraModelService services.CameraModelService) *CameraModelHandler {
	return &CameraModelHandler{cameraModelService: cameraModelService}
}

// List returns the catalog. Inactive entries need ?all=true and an admin.
func (h *CameraModelHandler) List(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("all") && utils.OptionalUser(c).IsAdmin()
	list, err := h.cameraModelService.List(c.UserContext(), includeInactive)
	if err != nil {
		return handleServiceError(c, "list_camera_models", err)
	}
	return utils.SuccessResponse(c, "Camera models retrieved", dto.CameraModelsToResponse(list))
}

func (h *CameraModelHandler) Create(c *fiber.Ctx) error {
	var req dto.CameraModelRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	model, err := h.cameraModelService.Create(c.UserContext(), &req)
	if err != nil {
		return handleServiceError(c, "create_camera_model", err)
	}
	return utils.CreatedResponse(c, "Camera model created", dto.CameraModelToResponse(model))
}

func (h *CameraModelHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	var req dto.CameraModelRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	model, err := h.cameraModelService.Update(c.UserContext(), id, &req)
	if err != nil {
		return handleServiceError(c, "update_camera_model", err)
	}
	return utils.SuccessResponse(c, "Camera model updated", dto.CameraModelToResponse(model))
}

func (h *CameraModelHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	if err := h.cameraModelService.Delete(c.UserContext(), id); err != nil {
		return handleServiceError(c, "delete_camera_model", err)
	}
	return utils.SuccessResponse(c, "Camera model deleted", nil)
}
