package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PhotoResponse is the DTO for photo API responses
type PhotoResponse struct {
	ID               uuid.UUID       `json:"id"`
	UserID           *uuid.UUID      `json:"userId,omitempty"`
	OriginalFilename string          `json:"originalFilename"`
	MimeType         string          `json:"mimeType"`
	Width            int             `json:"width"`
	Height           int             `json:"height"`
	FileSize         int64           `json:"fileSize"`
	StorageBackend   string          `json:"storageBackend"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	ImageData        string          `json:"imageData,omitempty"` // only when there is no URL
	Exif             json.RawMessage `json:"exif,omitempty"`
	CameraMake       string          `json:"cameraMake,omitempty"`
	CameraModel      string          `json:"cameraModel,omitempty"`
	DetectedGenre    string          `json:"detectedGenre,omitempty"`
	IsHidden         bool            `json:"isHidden"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// UploadPhotoRequest carries the image as base64 or a data URL
type UploadPhotoRequest struct {
	Image    string `json:"image" validate:"required"`
	Filename string `json:"filename" validate:"max=255"`
	Language string `json:"language" validate:"omitempty,min=2,max=8"`
}

type UploadPhotoResponse struct {
	Photo         PhotoResponse `json:"photo"`
	DetectedGenre string        `json:"detectedGenre"`
	Confidence    float64       `json:"confidence"`
}

// VisibilityRequest toggles the hidden flag of a photo or an analysis
type VisibilityRequest struct {
	IsHidden *bool `json:"isHidden" validate:"required"`
}
