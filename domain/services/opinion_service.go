package services

import (
	"context"

	"github.com/google/uuid"

	"photocritic/domain/dto"
)

type OpinionService interface {
	Submit(ctx context.Context, analysisID, userID uuid.UUID, req *dto.OpinionRequest) (*dto.OpinionResponse, error)
	List(ctx context.Context, analysisID uuid.UUID) ([]dto.OpinionResponse, error)
}
