package dto

import (
	"time"

	"github.com/google/uuid"

	"photocritic/domain/models"
)

// CameraModelRequest is used for both create and update
type CameraModelRequest struct {
	Manufacturer string `json:"manufacturer" validate:"required,max=100"`
	Model        string `json:"model" validate:"required,max=100"`
	DisplayName  string `json:"displayName" validate:"max=150"`
	Description  string `json:"description" validate:"max=2000"`
	ReleaseYear  int    `json:"releaseYear" validate:"omitempty,min=1900,max=2100"`
	IsActive     *bool  `json:"isActive"`
}

type CameraModelResponse struct {
	ID           uuid.UUID `json:"id"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	DisplayName  string    `json:"displayName"`
	Description  string    `json:"description,omitempty"`
	ReleaseYear  int       `json:"releaseYear,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func CameraModelToResponse(m *models.CameraModel) CameraModelResponse {
	return CameraModelResponse{
		ID:           m.ID,
		Manufacturer: m.Manufacturer,
		Model:        m.Model,
		DisplayName:  m.DisplayName,
		Description:  m.Description,
		ReleaseYear:  m.ReleaseYear,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func CameraModelsToResponse(list []models.CameraModel) []CameraModelResponse {
	out := make([]CameraModelResponse, len(list))
	for i := range list {
		out[i] = CameraModelToResponse(&list[i])
	}
	return out
}
