package dto

import (
	"time"

	"github.com/google/uuid"
)

type OpinionRequest struct {
	Liked   *bool  `json:"liked" validate:"required"`
	Comment string `json:"comment" validate:"max=2000"`
}

type OpinionResponse struct {
	ID          uuid.UUID  `json:"id"`
	AnalysisID  *uuid.UUID `json:"analysisId"`
	UserID      uuid.UUID  `json:"userId"`
	DisplayName string     `json:"displayName,omitempty"`
	Liked       bool       `json:"liked"`
	Comment     string     `json:"comment"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
