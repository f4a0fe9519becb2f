package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photocritic/domain/critique"
	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
	cleanupKeep     int
}

func NewAnalysisHandler(analysisService services.AnalysisService, cleanupKeep int) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, cleanupKeep: cleanupKeep}
}

// Analyze godoc
// @Summary Critique a photo
// @Description Runs one analysis. Model failures still answer 200 with a flagged fallback result.
// @Tags Analyses
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Analysis request"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 409 {object} map[string]interface{}
// @Router /analyses [post]
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	resp, err := h.analysisService.Analyze(c.UserContext(), callerID(c), &req)
	if err != nil {
		return handleServiceError(c, "analyze_photo", err)
	}
	return utils.SuccessResponse(c, "Analysis completed", resp)
}

// GetPersonas godoc
// @Summary List critic personas
// @Tags Analyses
// @Produce json
// @Router /analyses/personas [get]
func (h *AnalysisHandler) GetPersonas(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Personas retrieved", dto.PersonasToResponse(critique.Personas()))
}

// ListWithPhotos godoc
// @Summary List photos with their current analysis
// @Tags Analyses
// @Produce json
// @Param userId query string false "Owner filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Param includeHidden query bool false "Include hidden rows (owner only)"
// @Router /analyses/with-photos [get]
func (h *AnalysisHandler) ListWithPhotos(c *fiber.Ctx) error {
	var query dto.ListCardsQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}
	if err := utils.ValidateStruct(&query); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}
	return h.list(c, &query)
}

// ListByCamera godoc
// @Summary List analyses for one camera model
// @Tags Analyses
// @Produce json
// @Param model path string true "Camera model"
// @Router /analyses/by-camera/{model} [get]
func (h *AnalysisHandler) ListByCamera(c *fiber.Ctx) error {
	model, err := url.PathUnescape(c.Params("model"))
	if err != nil || strings.TrimSpace(model) == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid camera model", err)
	}
	query := dto.ListCardsQuery{
		CameraModel: model,
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", dto.DefaultPageSize),
	}
	return h.list(c, &query)
}

func (h *AnalysisHandler) list(c *fiber.Ctx, query *dto.ListCardsQuery) error {
	query.Normalize()
	cards, total := h.analysisService.ListWithPhotos(c.UserContext(), callerID(c), query)
	return utils.PaginatedResponse(c, "Analyses retrieved", cards, utils.NewPagination(query.Page, query.Limit, total))
}

// GetAnalysis godoc
// @Summary Get one analysis
// @Tags Analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}
	resp, err := h.analysisService.GetAnalysis(c.UserContext(), id, callerID(c))
	if err != nil {
		return handleServiceError(c, "get_analysis", err)
	}
	return utils.SuccessResponse(c, "Analysis retrieved", resp)
}

// SetVisibility godoc
// @Summary Hide or show an analysis
// @Tags Analyses
// @Security BearerAuth
// @Param id path string true "Analysis ID"
// @Router /analyses/{id}/visibility [patch]
func (h *AnalysisHandler) SetVisibility(c *fiber.Ctx) error {
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

	if err := h.analysisService.SetVisibility(c.UserContext(), id, user.ID, *req.IsHidden); err != nil {
		return handleServiceError(c, "analysis_visibility", err)
	}
	return utils.SuccessResponse(c, "Visibility updated", fiber.Map{"id": id, "isHidden": *req.IsHidden})
}

// Delete godoc
// @Summary Delete an analysis
// @Description Opinions on the analysis are kept with a NULL reference
// @Tags Analyses
// @Security BearerAuth
// @Param id path string true "Analysis ID"
// @Router /analyses/{id} [delete]
func (h *AnalysisHandler) Delete(c *fiber.Ctx) error {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, err)
	}

	if err := h.analysisService.Delete(c.UserContext(), id, user.ID); err != nil {
		return handleServiceError(c, "delete_analysis", err)
	}
	return utils.SuccessResponse(c, "Analysis deleted", nil)
}

// Cleanup godoc
// @Summary Collapse redundant analyses
// @Tags Admin
// @Security BearerAuth
// @Param keep query int false "Analyses kept per photo"
// @Router /admin/analyses/cleanup [post]
func (h *AnalysisHandler) Cleanup(c *fiber.Ctx) error {
	keep := c.QueryInt("keep", h.cleanupKeep)
	if keep < 1 {
		keep = 1
	}
	deleted, err := h.analysisService.CleanupRedundant(c.UserContext(), keep)
	if err != nil {
		return handleServiceError(c, "cleanup_analyses", err)
	}
	return utils.SuccessResponse(c, "Cleanup finished", dto.CleanupResponse{Deleted: deleted, KeepPerPhoto: keep})
}
