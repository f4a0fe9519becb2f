package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Provider    string    `gorm:"default:'google';uniqueIndex:idx_users_provider_external"` // google
	ExternalID  string    `gorm:"not null;uniqueIndex:idx_users_provider_external"`         // OAuth subject
	Email       string    `gorm:"uniqueIndex;not null"`
	DisplayName string
	Avatar      string
	Bio         string `gorm:"type:text"`
	SocialLinks datatypes.JSONMap
	Role        string `gorm:"default:'user'"`
	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Photos []Photo `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
