package serviceimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"photocritic/domain/critique"
	"photocritic/domain/dto"
	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
	"photocritic/infrastructure/imageproc"
	"photocritic/pkg/logger"
)

type PhotoServiceConfig struct {
	MaxUploadBytes      int64
	MaxImageDimension   int
	DetectGenreOnUpload bool
}

type PhotoServiceImpl struct {
	photoRepo   repositories.PhotoRepository
	cameraRepo  repositories.CameraModelRepository
	store       ImageStore
	critic      Critic
	activityLog services.ActivityLogService
	cfg         PhotoServiceConfig
}

func NewPhotoService(
	photoRepo repositories.PhotoRepository,
	cameraRepo repositories.CameraModelRepository,
	store ImageStore,
	critic Critic,
	activityLog services.ActivityLogService,
	cfg PhotoServiceConfig,
) services.PhotoService {
	return &PhotoServiceImpl{
		photoRepo:   photoRepo,
		cameraRepo:  cameraRepo,
		store:       store,
		critic:      critic,
		activityLog: activityLog,
		cfg:         cfg,
	}
}

func (s *PhotoServiceImpl) Upload(ctx context.Context, userID *uuid.UUID, req *dto.UploadPhotoRequest) (*dto.UploadPhotoResponse, error) {
	data, _, err := imageproc.DecodeBase64(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", services.ErrInvalidInput, s.cfg.MaxUploadBytes)
	}

	// EXIF is read from the original; resizing drops it
	meta, err := imageproc.ReadExif(data)
	if err != nil {
		logger.StorageError("read_exif", "Failed to read EXIF", err, nil)
	}

	img, err := imageproc.Fit(data, s.cfg.MaxImageDimension)
	if err != nil {
		if errors.Is(err, imageproc.ErrUndecodable) || errors.Is(err, imageproc.ErrNotAnImage) || errors.Is(err, imageproc.ErrEmptyImage) {
			return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("process image: %w", err)
	}

	key := path.Join("photos", time.Now().UTC().Format("2006/01"), uuid.NewString()+imageproc.Extension(img.MIME))
	loc := s.store.Save(ctx, key, img.Data, img.MIME)
	if !loc.Valid() {
		return nil, services.ErrNoImageLocation
	}

	photo := &models.Photo{
		UserID:           userID,
		OriginalFilename: strings.TrimSpace(req.Filename),
		MimeType:         img.MIME,
		FileSize:         int64(len(img.Data)),
		Width:            img.Width,
		Height:           img.Height,
		Location:         loc,
		CameraMake:       meta.Make,
		CameraModel:      meta.Model,
		DetectedGenre:    critique.GenreGeneral,
	}
	if !meta.Empty() {
		if raw, err := json.Marshal(meta.Tags); err == nil {
			photo.Exif = datatypes.JSON(raw)
		}
	}

	guess := critique.GenreGuess{Genre: critique.GenreGeneral}
	if s.cfg.DetectGenreOnUpload && s.critic != nil {
		guess = s.critic.DetectGenre(ctx, critique.ImageInput{Data: img.Data, MIMEType: img.MIME})
		photo.DetectedGenre = guess.Genre
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}

	if photo.CameraModel != "" {
		if err := s.cameraRepo.EnsureExists(ctx, photo.CameraMake, photo.CameraModel); err != nil {
			logger.DBError("camera_model_register", "Failed to register camera model", err, map[string]interface{}{
				"make":  photo.CameraMake,
				"model": photo.CameraModel,
			})
		}
	}

	s.activityLog.Record(ctx, &models.ActivityLog{
		UserID:       userID,
		PhotoID:      &photo.ID,
		ActivityType: models.ActivityPhotoUploaded,
		Message:      "Photo uploaded",
	})
	logger.Storage("photo_uploaded", "Photo uploaded", map[string]interface{}{
		"photo_id": photo.ID.String(),
		"backend":  string(loc.Backend),
		"resized":  img.Resized,
		"genre":    guess.Genre,
	})

	return &dto.UploadPhotoResponse{
		Photo:         *dto.PhotoToPhotoResponse(photo),
		DetectedGenre: guess.Genre,
		Confidence:    guess.Confidence,
	}, nil
}

func (s *PhotoServiceImpl) GetPhoto(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get photo")
	}
	if photo.IsHidden && (viewerID == nil || !photo.OwnedBy(*viewerID)) {
		return nil, fmt.Errorf("get photo: %w", services.ErrNotFound)
	}
	return photo, nil
}

func (s *PhotoServiceImpl) SetVisibility(ctx context.Context, id, userID uuid.UUID, hidden bool) error {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err, "get photo")
	}
	if !photo.OwnedBy(userID) {
		return services.ErrForbidden
	}
	if err := s.photoRepo.UpdateVisibility(ctx, id, hidden); err != nil {
		return translate(err, "update photo visibility")
	}

	s.activityLog.Record(ctx, &models.ActivityLog{
		UserID:       &userID,
		PhotoID:      &id,
		ActivityType: models.ActivityPhotoHidden,
		Message:      "Photo visibility changed",
		Details:      datatypes.NewJSONType(models.ActivityDetails{Hidden: &hidden}),
	})
	return nil
}
