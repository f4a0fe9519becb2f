package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type PhotoHandler struct {
	photoService services.PhotoService
}

func NewPhotoHandler(photoService services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// Upload godoc
// @Summary Upload a photo
// @Description Accepts base64 or a data URL, reads EXIF, resizes and stores the image
// @Tags Photos
// @Accept json
// @Produce json
// @Param request body dto.UploadPhotoRequest true "Image payload"
// @Success 201 {object} dto.UploadPhotoResponse
// @Router /photos/upload [post]
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	var req dto.UploadPhotoRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	resp, err := h.photoService.Upload(c.UserContext(), callerID(c), &req)
	if err != nil {
		return handleServiceError(c, "upload_photo", err)
	}
	return utils.CreatedResponse(c, "Photo uploaded", resp)
}

// GetPhoto godoc
// @Summary Get a photo
// @Tags Photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} dto.PhotoResponse
// @Router /photos/{id} [get]
func (h *PhotoHandler) GetPhoto(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}

	photo, err := h.photoService.GetPhoto(c.UserContext(), id, callerID(c))
	if err != nil {
		return handleServiceError(c, "get_photo", err)
	}
	return utils.SuccessResponse(c, "Photo retrieved", dto.PhotoToPhotoResponse(photo))
}

// SetVisibility godoc
// @Summary Hide or show a photo
// @Tags Photos
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param request body dto.VisibilityRequest true "Visibility"
// @Router /photos/{id}/visibility [patch]
func (h *PhotoHandler) SetVisibility(c *fiber.Ctx) error {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	var req dto.VisibilityRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.photoService.SetVisibility(c.UserContext(), id, user.ID, *req.IsHidden); err != nil {
		return handleServiceError(c, "photo_visibility", err)
	}
	return utils.SuccessResponse(c, "Visibility updated", fiber.Map{"id": id, "isHidden": *req.IsHidden})
}
