package handlers

import (
	"photocritic/domain/services"
	"photocritic/pkg/config"
)

// Services contains all the services needed for handlers
type Services struct {
	AuthService        services.AuthService
	UserService        services.UserService
	PhotoService       services.PhotoService
	AnalysisService    services.AnalysisService
	OpinionService     services.OpinionService
	CameraModelService services.CameraModelService
	ActivityLogService services.ActivityLogService
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Photo       *PhotoHandler
	Analysis    *AnalysisHandler
	Opinion     *OpinionHandler
	CameraModel *CameraModelHandler
	ActivityLog *ActivityLogHandler
	Log         *LogHandler
	Health      *HealthHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies.
// health may be nil; the detailed health route is skipped then.
func NewHandlers(services *Services, health *HealthHandler, cfg *config.Config) *Handlers {
	h := &Handlers{
		Auth:        NewAuthHandler(services.AuthService, cfg.App.FrontendURL, cfg.App.Env == "production"),
		User:        NewUserHandler(services.UserService),
		Photo:       NewPhotoHandler(services.PhotoService),
		Analysis:    NewAnalysisHandler(services.AnalysisService, cfg.Analysis.CleanupKeep),
		Opinion:     NewOpinionHandler(services.OpinionService),
		CameraModel: NewCameraModelHandler(services.CameraModelService),
		Log:         NewLogHandler(),
		Health:      health,
	}
	if services.ActivityLogService != nil {
		h.ActivityLog = NewActivityLogHandler(services.ActivityLogService, services.PhotoService)
	}
	return h
}
