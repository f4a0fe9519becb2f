package serviceimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"photocritic/domain/dto"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
)

type OpinionServiceImpl struct {
	opinionRepo  repositories.OpinionRepository
	analysisRepo repositories.AnalysisRepository
}

func NewOpinionService(opinionRepo repositories.OpinionRepository, analysisRepo repositories.AnalysisRepository) services.OpinionService {
	return &OpinionServiceImpl{
		opinionRepo:  opinionRepo,
		analysisRepo: analysisRepo,
	}
}

// Submit records the caller's opinion. A second submission replaces the first.
func (s *OpinionServiceImpl) Submit(ctx context.Context, analysisID, userID uuid.UUID, req *dto.OpinionRequest) (*dto.OpinionResponse, error) {
	if req.Liked == nil {
		return nil, fmt.Errorf("%w: liked is required", services.ErrInvalidInput)
	}
	if _, err := s.analysisRepo.GetByID(ctx, analysisID); err != nil {
		return nil, translate(err, "get analysis")
	}

	opinion, err := s.opinionRepo.Upsert(ctx, analysisID, userID, *req.Liked, strings.TrimSpace(req.Comment))
	if err != nil {
		return nil, fmt.Errorf("save opinion: %w", err)
	}
	resp := dto.OpinionToResponse(opinion)
	return &resp, nil
}

func (s *OpinionServiceImpl) List(ctx context.Context, analysisID uuid.UUID) ([]dto.OpinionResponse, error) {
	opinions, err := s.opinionRepo.ListCanonical(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list opinions: %w", err)
	}
	out := make([]dto.OpinionResponse, len(opinions))
	for i := range opinions {
		out[i] = dto.OpinionToResponse(&opinions[i])
	}
	return out, nil
}
