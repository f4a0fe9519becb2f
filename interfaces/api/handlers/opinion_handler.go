package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type OpinionHandler struct {
	opinionService services.OpinionService
}

func NewOpinionHandler(opinionService services.OpinionService) *OpinionHandler {
	return &OpinionHandler{opinionService: opinionService}
}

// Submit godoc
// @Summary Like or dislike an analysis
// @Description A second submission by the same user replaces the first
// @Tags Opinions
// @Security BearerAuth
// @Param id path string true "Analysis ID"
// @Param request body dto.OpinionRequest true "Opinion"
// @Router /analyses/{id}/opinions [post]
func (h *OpinionHandler) Submit(c *fiber.Ctx) error {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	var req dto.OpinionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	resp, err := h.opinionService.Submit(c.UserContext(), analysisID, user.ID, &req)
	if err != nil {
		return handleServiceError(c, "submit_opinion", err)
	}
	return utils.SuccessResponse(c, "Opinion saved", resp)
}

// List godoc
// @Summary Opinions on an analysis, latest per user
// @Tags Opinions
// @Param id path string true "Analysis ID"
// @Router /analyses/{id}/opinions [get]
func (h *OpinionHandler) List(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	list, err := h.opinionService.List(c.UserContext(), analysisID)
	if err != nil {
		return handleServiceError(c, "list_opinions", err)
	}
	return utils.SuccessResponse(c, "Opinions retrieved", list)
}
