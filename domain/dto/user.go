package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse is the DTO for the authenticated user
type UserResponse struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"displayName"`
	Avatar      string            `json:"avatar"`
	Bio         string            `json:"bio"`
	SocialLinks map[string]string `json:"socialLinks"`
	Role        string            `json:"role"`
	Provider    string            `json:"provider"`
	LastLoginAt *time.Time        `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// PublicUserResponse is what other users see
type PublicUserResponse struct {
	ID          uuid.UUID         `json:"id"`
	DisplayName string            `json:"displayName"`
	Avatar      string            `json:"avatar"`
	Bio         string            `json:"bio"`
	SocialLinks map[string]string `json:"socialLinks"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// UpdateProfileRequest edits the caller's profile. Nil fields are left as is.
type UpdateProfileRequest struct {
	DisplayName *string           `json:"displayName" validate:"omitempty,min=1,max=60"`
	Bio         *string           `json:"bio" validate:"omitempty,max=500"`
	SocialLinks map[string]string `json:"socialLinks" validate:"omitempty,max=10,dive,keys,min=1,max=30,endkeys,url"`
}
