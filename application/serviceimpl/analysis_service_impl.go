package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"photocritic/domain/critique"
	"photocritic/domain/dto"
	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
	"photocritic/pkg/inflight"
	"photocritic/pkg/logger"
	"photocritic/pkg/metrics"
)

// payload upgrades run detached from the request that discovered them
const migrationTimeout = 10 * time.Second

type AnalysisServiceImpl struct {
	analysisRepo repositories.AnalysisRepository
	photoRepo    repositories.PhotoRepository
	guard        inflight.Guard
	critic       Critic
	store        ImageStore
	publisher    StatusPublisher
	activityLog  services.ActivityLogService
}

func NewAnalysisService(
	analysisRepo repositories.AnalysisRepository,
	photoRepo repositories.PhotoRepository,
	guard inflight.Guard,
	critic Critic,
	store ImageStore,
	publisher StatusPublisher,
	activityLog services.ActivityLogService,
) services.AnalysisService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &AnalysisServiceImpl{
		analysisRepo: analysisRepo,
		photoRepo:    photoRepo,
		guard:        guard,
		critic:       critic,
		store:        store,
		publisher:    publisher,
		activityLog:  activityLog,
	}
}

func (s *AnalysisServiceImpl) Analyze(ctx context.Context, callerID *uuid.UUID, req *dto.AnalyzeRequest) (*dto.AnalysisResponse, error) {
	photoID, err := uuid.Parse(req.PhotoID)
	if err != nil {
		return nil, fmt.Errorf("%w: photoId", services.ErrInvalidInput)
	}
	if _, ok := critique.LookupPersona(req.Persona); !ok {
		return nil, fmt.Errorf("%w: %q", services.ErrUnknownPersona, req.Persona)
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return nil, translate(err, "get photo")
	}
	if photo.IsHidden && (callerID == nil || !photo.OwnedBy(*callerID)) {
		return nil, fmt.Errorf("get photo: %w", services.ErrNotFound)
	}

	overrideURL, err := imageOverride(photo, callerID, req.ImageURL)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.TryAcquire(ctx, photoID.String())
	if err != nil {
		if errors.Is(err, inflight.ErrInProgress) {
			metrics.AnalysisConflicts.Inc()
			logger.AnalysisWarn("analysis_conflict", "Analysis already in progress", map[string]interface{}{"photo_id": photoID.String()})
			return nil, services.ErrAnalysisInProgress
		}
		return nil, fmt.Errorf("acquire analysis lease: %w", err)
	}
	defer release()

	image, err := s.imageInput(ctx, photo, overrideURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.critic.Analyze(ctx, critique.AnalyzeRequest{
		Image:    image,
		Persona:  req.Persona,
		Language: strings.ToLower(strings.TrimSpace(req.Language)),
		Genre:    photo.DetectedGenre,
		OnState: func(state critique.State, reason critique.FallbackReason) {
			s.transition(photoID, state, reason)
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, critique.ErrUnknownPersona):
			return nil, fmt.Errorf("%w: %q", services.ErrUnknownPersona, req.Persona)
		case errors.Is(err, critique.ErrNoImage):
			return nil, services.ErrNoImageLocation
		}
		return nil, fmt.Errorf("analyze photo: %w", err)
	}

	outcome := "parsed"
	if result.IsNotEvaluable {
		outcome = string(result.Reason)
	}
	metrics.AnalysisOutcomes.WithLabelValues(outcome).Inc()

	resp := &dto.AnalysisResponse{
		PhotoID:     photo.ID,
		UserID:      photo.UserID,
		Result:      result,
		CameraMake:  photo.CameraMake,
		CameraModel: photo.CameraModel,
	}
	details := models.ActivityDetails{
		Persona:    result.Persona,
		Language:   result.Language,
		Reason:     string(result.Reason),
		Score:      result.OverallScore,
		DurationMs: time.Since(start).Milliseconds(),
	}

	if !result.Persistable() {
		logger.AnalysisWarn("analysis_fallback", "Analysis returned a fallback result", map[string]interface{}{
			"photo_id": photoID.String(),
			"reason":   string(result.Reason),
		})
		s.activityLog.Record(ctx, &models.ActivityLog{
			UserID:       callerID,
			PhotoID:      &photo.ID,
			ActivityType: models.ActivityAnalysisFallback,
			Message:      "Analysis fell back to the default result",
			Details:      datatypes.NewJSONType(details),
		})
		return resp, nil
	}

	analysis, err := s.persist(ctx, photo, result)
	if err != nil {
		return nil, err
	}
	s.transition(photoID, critique.StatePersisted, "")

	id, createdAt := analysis.ID, analysis.CreatedAt
	resp.ID = &id
	resp.CreatedAt = &createdAt
	resp.Persisted = true

	if photo.DetectedGenre == "" || photo.DetectedGenre == critique.GenreGeneral {
		if g := result.DetectedGenre; g != "" && g != critique.GenreGeneral {
			if err := s.photoRepo.UpdateGenre(ctx, photo.ID, g); err != nil {
				logger.DBError("update_photo_genre", "Failed to update photo genre", err, map[string]interface{}{"photo_id": photo.ID.String()})
			}
		}
	}

	details.AnalysisID = id.String()
	s.activityLog.Record(ctx, &models.ActivityLog{
		UserID:       callerID,
		PhotoID:      &photo.ID,
		ActivityType: models.ActivityAnalysisCompleted,
		Message:      "Analysis completed",
		Details:      datatypes.NewJSONType(details),
	})
	logger.Analysis("analysis_completed", "Analysis stored", map[string]interface{}{
		"photo_id":    photoID.String(),
		"analysis_id": id.String(),
		"persona":     result.Persona,
		"score":       result.OverallScore,
		"duration_ms": details.DurationMs,
	})
	return resp, nil
}

func (s *AnalysisServiceImpl) transition(photoID uuid.UUID, state critique.State, reason critique.FallbackReason) {
	metrics.AnalysisTransitions.WithLabelValues(string(state)).Inc()
	s.publisher.PublishStatus(photoID, state, reason)
}

func (s *AnalysisServiceImpl) persist(ctx context.Context, photo *models.Photo, result critique.Result) (*models.Analysis, error) {
	payload, err := result.Analysis.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode analysis payload: %w", err)
	}
	tags := result.Tags
	if tags == nil {
		tags = []string{}
	}
	analysis := &models.Analysis{
		PhotoID:        photo.ID,
		UserID:         photo.UserID,
		DetectedGenre:  result.DetectedGenre,
		Summary:        result.Summary,
		OverallScore:   result.OverallScore,
		CategoryScores: datatypes.NewJSONType(result.CategoryScores),
		Tags:           datatypes.JSONSlice[string](tags),
		Payload:        datatypes.JSON(payload),
		Persona:        result.Persona,
		Language:       result.Language,
		CameraMake:     photo.CameraMake,
		CameraModel:    photo.CameraModel,
		IsNotEvaluable: result.IsNotEvaluable,
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	return analysis, nil
}

// imageOverride returns the URL to critique instead of the stored image.
// Only the owner may point an analysis at another image; anyone else may
// only repeat the stored URL.
func imageOverride(photo *models.Photo, callerID *uuid.UUID, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == photo.Location.URL {
		return "", nil
	}
	if callerID == nil || !photo.OwnedBy(*callerID) {
		return "", fmt.Errorf("image override: %w", services.ErrForbidden)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: imageUrl must be an http(s) URL", services.ErrInvalidInput)
	}
	return u.String(), nil
}

// imageInput prefers an explicit URL, then the stored bytes, then the
// stored URL when the bytes cannot be read.
func (s *AnalysisServiceImpl) imageInput(ctx context.Context, photo *models.Photo, overrideURL string) (critique.ImageInput, error) {
	if u := strings.TrimSpace(overrideURL); u != "" {
		return critique.ImageInput{URL: u}, nil
	}
	loc := photo.Location
	if !loc.Valid() {
		return critique.ImageInput{}, services.ErrNoImageLocation
	}

	data, err := s.store.Load(ctx, loc)
	if err == nil && len(data) > 0 {
		return critique.ImageInput{Data: data, MIMEType: photo.MimeType}, nil
	}
	if strings.HasPrefix(loc.URL, "http://") || strings.HasPrefix(loc.URL, "https://") || strings.HasPrefix(loc.URL, "gs://") {
		return critique.ImageInput{URL: loc.URL, MIMEType: photo.MimeType}, nil
	}
	logger.StorageError("load_image", "Stored image is unreadable", err, map[string]interface{}{
		"photo_id": photo.ID.String(),
		"backend":  string(loc.Backend),
	})
	return critique.ImageInput{}, services.ErrNoImageLocation
}

func (s *AnalysisServiceImpl) GetAnalysis(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*dto.AnalysisResponse, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get analysis")
	}
	hidden := analysis.IsHidden || (analysis.Photo != nil && analysis.Photo.IsHidden)
	if hidden && (viewerID == nil || !analysis.OwnedBy(*viewerID)) {
		return nil, fmt.Errorf("get analysis: %w", services.ErrNotFound)
	}

	payload, migrated := critique.DecodePayload(analysis.Payload)
	if migrated {
		s.upgradePayload(analysis.ID, payload)
	}
	return dto.AnalysisToResponse(analysis, payload), nil
}

// upgradePayload rewrites a legacy payload in the background. Failure only
// means the next read migrates again.
func (s *AnalysisServiceImpl) upgradePayload(id uuid.UUID, payload critique.Payload) {
	raw, err := payload.Marshal()
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()
		if err := s.analysisRepo.UpdatePayload(ctx, id, raw); err != nil {
			logger.DBError("payload_migration", "Failed to store migrated payload", err, map[string]interface{}{"analysis_id": id.String()})
			return
		}
		logger.DB("payload_migration", "Payload upgraded", map[string]interface{}{
			"analysis_id":    id.String(),
			"schema_version": critique.PayloadSchemaVersion,
		})
	}()
}

func (s *AnalysisServiceImpl) ListWithPhotos(ctx context.Context, callerID *uuid.UUID, query *dto.ListCardsQuery) ([]dto.PhotoCard, int64) {
	query.Normalize()
	filter := repositories.AnalysisFilter{
		CameraModel: strings.TrimSpace(query.CameraModel),
		Offset:      query.Offset(),
		Limit:       query.Limit,
	}
	if query.UserID != "" {
		userID, err := uuid.Parse(query.UserID)
		if err != nil {
			return []dto.PhotoCard{}, 0
		}
		filter.UserID = &userID
		// hidden rows are only for their owner
		filter.IncludeHidden = query.IncludeHidden && callerID != nil && *callerID == userID
	}

	rows, total, err := s.analysisRepo.ListCurrent(ctx, filter)
	if err != nil {
		logger.DBError("list_analyses", "Failed to list analyses", err, map[string]interface{}{
			"camera_model": filter.CameraModel,
			"page":         query.Page,
		})
		return []dto.PhotoCard{}, 0
	}
	return dto.AnalysesToCards(rows), total
}

func (s *AnalysisServiceImpl) ownedAnalysis(ctx context.Context, id, userID uuid.UUID) (*models.Analysis, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get analysis")
	}
	if !analysis.OwnedBy(userID) {
		return nil, services.ErrForbidden
	}
	return analysis, nil
}

func (s *AnalysisServiceImpl) SetVisibility(ctx context.Context, id, userID uuid.UUID, hidden bool) error {
	analysis, err := s.ownedAnalysis(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.analysisRepo.UpdateVisibility(ctx, id, hidden); err != nil {
		return translate(err, "update analysis visibility")
	}
	s.activityLog.Record(ctx, &models.ActivityLog{
		UserID:       &userID,
		PhotoID:      &analysis.PhotoID,
		ActivityType: models.ActivityAnalysisHidden,
		Message:      "Analysis visibility changed",
		Details:      datatypes.NewJSONType(models.ActivityDetails{AnalysisID: id.String(), Hidden: &hidden}),
	})
	return nil
}

func (s *AnalysisServiceImpl) Delete(ctx context.Context, id, userID uuid.UUID) error {
	analysis, err := s.ownedAnalysis(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.analysisRepo.Delete(ctx, id); err != nil {
		return translate(err, "delete analysis")
	}
	s.activityLog.Record(ctx, &models.ActivityLog{
		UserID:       &userID,
		PhotoID:      &analysis.PhotoID,
		ActivityType: models.ActivityAnalysisDeleted,
		Message:      "Analysis deleted",
		Details:      datatypes.NewJSONType(models.ActivityDetails{AnalysisID: id.String()}),
	})
	return nil
}

func (s *AnalysisServiceImpl) CleanupRedundant(ctx context.Context, keepPerPhoto int) (int64, error) {
	if keepPerPhoto < 1 {
		keepPerPhoto = 1
	}
	start := time.Now()
	deleted, err := s.analysisRepo.DeleteRedundant(ctx, keepPerPhoto)
	if err != nil {
		logger.DBError("cleanup_redundant", "Redundant analysis cleanup failed", err, map[string]interface{}{"deleted": deleted})
		return deleted, fmt.Errorf("cleanup redundant analyses: %w", err)
	}

	s.activityLog.Record(ctx, &models.ActivityLog{
		ActivityType: models.ActivityCleanupRun,
		Message:      "Redundant analyses removed",
		Details: datatypes.NewJSONType(models.ActivityDetails{
			Count:      deleted,
			DurationMs: time.Since(start).Milliseconds(),
		}),
	})
	logger.Analysis("cleanup_redundant", "Redundant analyses removed", map[string]interface{}{
		"deleted":        deleted,
		"keep_per_photo": keepPerPhoto,
	})
	return deleted, nil
}

func (s *AnalysisServiceImpl) IsProcessing(ctx context.Context, photoID uuid.UUID) bool {
	return s.guard.IsProcessing(ctx, photoID.String())
}
