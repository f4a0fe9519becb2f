package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StorageBackend string

const (
	StorageS3     StorageBackend = "s3"
	StorageLocal  StorageBackend = "local"
	StorageInline StorageBackend = "inline"
)

// ImageLocation is where a photo's bytes can be fetched from. It is resolved
// once at write time; InlineData is only kept when there is no URL.
type ImageLocation struct {
	Backend    StorageBackend `gorm:"column:storage_backend;type:varchar(16);not null"`
	URL        string         `gorm:"column:image_url"`
	StorageKey string         `gorm:"column:storage_key"`
	InlineData string         `gorm:"column:inline_data;type:text"` // base64
}

// ResolveImageLocation picks the best available location: cloud URL, then
// local path, then inline data. ok is false when nothing is resolvable.
func ResolveImageLocation(cloudURL, cloudKey, localURL, localKey, inlineBase64 string) (loc ImageLocation, ok bool) {
	switch {
	case cloudURL != "":
		return ImageLocation{Backend: StorageS3, URL: cloudURL, StorageKey: cloudKey}, true
	case localURL != "":
		return ImageLocation{Backend: StorageLocal, URL: localURL, StorageKey: localKey}, true
	case inlineBase64 != "":
		return ImageLocation{Backend: StorageInline, InlineData: inlineBase64}, true
	}
	return ImageLocation{}, false
}

func (l ImageLocation) Valid() bool {
	return l.URL != "" || l.InlineData != ""
}

type Photo struct {
	ID     uuid.UUID  `gorm:"primaryKey;type:uuid"`
	UserID *uuid.UUID `gorm:"type:uuid;index"` // nil for anonymous uploads

	OriginalFilename string
	MimeType         string
	FileSize         int64
	Width            int
	Height           int

	Location ImageLocation `gorm:"embedded"`

	Exif          datatypes.JSON
	CameraMake    string `gorm:"index"`
	CameraModel   string `gorm:"index"`
	DetectedGenre string
	IsHidden      bool `gorm:"default:false;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	User *User `gorm:"foreignKey:UserID"`
}

func (Photo) TableName() string {
	return "photos"
}

func (p *Photo) OwnedBy(userID uuid.UUID) bool {
	return p.UserID != nil && *p.UserID == userID
}
