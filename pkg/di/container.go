package di

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"photocritic/application/serviceimpl"
	"photocritic/domain/critique"
	"photocritic/domain/repositories"
	"photocritic/domain/services"
	"photocritic/infrastructure/gemini"
	"photocritic/infrastructure/oauth"
	"photocritic/infrastructure/postgres"
	"photocritic/infrastructure/redis"
	"photocritic/infrastructure/storage"
	"photocritic/infrastructure/websocket"
	"photocritic/interfaces/api/handlers"
	websocketHandler "photocritic/interfaces/api/websocket"
	"photocritic/pkg/config"
	"photocritic/pkg/inflight"
	"photocritic/pkg/logger"
	"photocritic/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redis.RedisClient
	Storage        *storage.Storage
	LocalStore     *storage.LocalStore
	EventScheduler scheduler.EventScheduler
	GoogleOAuth    *oauth.GoogleOAuth
	GeminiClient   *gemini.GeminiClient
	Orchestrator   *critique.Orchestrator
	Guard          inflight.Guard
	Hub            *websocket.Hub

	// Repositories
	UserRepository        repositories.UserRepository
	PhotoRepository       repositories.PhotoRepository
	AnalysisRepository    repositories.AnalysisRepository
	OpinionRepository     repositories.OpinionRepository
	CameraModelRepository repositories.CameraModelRepository
	ActivityLogRepository repositories.ActivityLogRepository

	// Services
	AuthService        services.AuthService
	UserService        services.UserService
	PhotoService       services.PhotoService
	AnalysisService    services.AnalysisService
	OpinionService     services.OpinionService
	CameraModelService services.CameraModelService
	ActivityLogService services.ActivityLogService
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	return c.initScheduler()
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{"env": cfg.App.Env})
	return nil
}

func (c *Container) initInfrastructure() error {
	dbCfg := c.Config.Database
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     dbCfg.Driver,
		Host:       dbCfg.Host,
		Port:       dbCfg.Port,
		User:       dbCfg.User,
		Password:   dbCfg.Password,
		DBName:     dbCfg.DBName,
		SSLMode:    dbCfg.SSLMode,
		SQLitePath: dbCfg.SQLitePath,
		Verbose:    c.Config.App.Env == "development",
	})
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", map[string]interface{}{"driver": dbCfg.Driver})

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	if c.Config.Redis.Enabled {
		c.RedisClient = redis.NewRedisClient(redis.RedisConfig{
			Host:     c.Config.Redis.Host,
			Port:     c.Config.Redis.Port,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err := c.RedisClient.Ping(context.Background()); err != nil {
			logger.StartupWarn("redis_connection_failed", "Redis connection failed", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_connected", "Redis connected", nil)
		}
	}

	c.initGuard()

	if err := c.initStorage(); err != nil {
		return err
	}

	c.GoogleOAuth = oauth.NewGoogleOAuth(c.Config.Google)
	if err := c.GoogleOAuth.ValidateConfig(); err != nil {
		logger.StartupWarn("google_oauth_not_configured", "Google OAuth not configured", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Startup("google_oauth_initialized", "Google OAuth initialized", nil)
	}

	c.initCritic()
	c.Hub = websocket.NewHub(0)
	return nil
}

func (c *Container) initGuard() {
	ttl := time.Duration(c.Config.Analysis.GuardTTLSeconds) * time.Second
	if c.Config.Analysis.GuardBackend == "redis" {
		if c.RedisClient == nil {
			logger.StartupWarn("guard_fallback", "Redis guard requested but Redis is disabled, using memory guard", nil)
		} else {
			c.Guard = inflight.NewRedisGuard(c.RedisClient.Client(), "photocritic:analysis:", ttl)
			logger.Startup("guard_initialized", "Analysis guard initialized", map[string]interface{}{"backend": "redis"})
			return
		}
	}
	c.Guard = inflight.NewMemoryGuard()
	logger.Startup("guard_initialized", "Analysis guard initialized", map[string]interface{}{"backend": "memory"})
}

func (c *Container) initStorage() error {
	storageCfg := c.Config.Storage

	local, err := storage.NewLocalStore(storageCfg.LocalDir, storageCfg.LocalURLPrefix)
	if err != nil {
		logger.StartupWarn("local_storage_failed", "Local storage unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		c.LocalStore = local
	}

	var cloud storage.Store
	if storageCfg.S3Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s3, err := storage.NewS3Store(ctx, storageCfg)
		if err != nil {
			logger.StartupWarn("s3_storage_failed", "Object storage unavailable, falling back", map[string]interface{}{"error": err.Error()})
		} else {
			cloud = s3
			logger.Startup("s3_storage_initialized", "Object storage initialized", map[string]interface{}{"bucket": storageCfg.S3Bucket})
		}
	}

	// nil stores are skipped by the fallback chain
	var localStore storage.Store
	if c.LocalStore != nil {
		localStore = c.LocalStore
	}
	c.Storage = storage.New(cloud, localStore)
	return nil
}

func (c *Container) initCritic() {
	gemCfg := c.Config.Gemini
	cb := c.Config.CircuitBreaker

	var model critique.Model
	if gemCfg.APIKey != "" {
		client, err := gemini.NewGeminiClient(gemini.Config{
			APIKey: gemCfg.APIKey,
			Model:  gemCfg.Model,
			Breaker: gemini.BreakerConfig{
				MaxRequests: cb.MaxRequests,
				Interval:    time.Duration(cb.IntervalSeconds) * time.Second,
				Timeout:     time.Duration(cb.TimeoutSeconds) * time.Second,
				MinRequests: cb.MinRequests,
				FailureRate: cb.FailureRate,
			},
			MaxFetchBytes:     int64(c.Config.Storage.MaxUploadBytes),
			AllowPrivateFetch: gemCfg.AllowPrivateFetch,
		})
		if err != nil {
			logger.StartupWarn("gemini_init_failed", "Failed to initialize Gemini client", map[string]interface{}{"error": err.Error()})
		} else {
			c.GeminiClient = client
			model = client
			logger.Startup("gemini_initialized", "Gemini client initialized", map[string]interface{}{"model": gemCfg.Model})
		}
	} else {
		logger.StartupWarn("gemini_not_configured", "Gemini API key not configured, analyses will fall back", nil)
	}

	c.Orchestrator = critique.NewOrchestrator(model, nil, critique.Options{
		Timeout:             time.Duration(gemCfg.TimeoutSeconds) * time.Second,
		TwoStageTranslation: gemCfg.TwoStageTranslation,
		BaseLanguage:        gemCfg.BaseLanguage,
	})
}

func (c *Container) initRepositories() error {
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.PhotoRepository = postgres.NewPhotoRepository(c.DB)
	c.AnalysisRepository = postgres.NewAnalysisRepository(c.DB)
	c.OpinionRepository = postgres.NewOpinionRepository(c.DB)
	c.CameraModelRepository = postgres.NewCameraModelRepository(c.DB)
	c.ActivityLogRepository = postgres.NewActivityLogRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	c.ActivityLogService = serviceimpl.NewActivityLogService(c.ActivityLogRepository)
	c.AuthService = serviceimpl.NewAuthService(c.UserRepository, c.GoogleOAuth, c.Config.JWT.Secret)
	c.UserService = serviceimpl.NewUserService(c.UserRepository)
	c.PhotoService = serviceimpl.NewPhotoService(
		c.PhotoRepository,
		c.CameraModelRepository,
		c.Storage,
		c.Orchestrator,
		c.ActivityLogService,
		serviceimpl.PhotoServiceConfig{
			MaxUploadBytes:      int64(c.Config.Storage.MaxUploadBytes),
			MaxImageDimension:   c.Config.Storage.MaxImageDimension,
			DetectGenreOnUpload: c.Config.Gemini.DetectGenreOnUpload,
		},
	)
	c.AnalysisService = serviceimpl.NewAnalysisService(
		c.AnalysisRepository,
		c.PhotoRepository,
		c.Guard,
		c.Orchestrator,
		c.Storage,
		c.Hub,
		c.ActivityLogService,
	)
	c.OpinionService = serviceimpl.NewOpinionService(c.OpinionRepository, c.AnalysisRepository)
	c.CameraModelService = serviceimpl.NewCameraModelService(c.CameraModelRepository)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	err := scheduler.RegisterMaintenanceJobs(c.EventScheduler, c.AnalysisService, c.ActivityLogService, scheduler.MaintenanceConfig{
		CleanupCron:     c.Config.Analysis.CleanupCron,
		CleanupKeep:     c.Config.Analysis.CleanupKeep,
		ActivityLogDays: c.Config.Analysis.ActivityLogDays,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance jobs: %w", err)
	}

	c.EventScheduler.Start()
	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	if c.GeminiClient != nil {
		c.GeminiClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_complete", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		AuthService:        c.AuthService,
		UserService:        c.UserService,
		PhotoService:       c.PhotoService,
		AnalysisService:    c.AnalysisService,
		OpinionService:     c.OpinionService,
		CameraModelService: c.CameraModelService,
		ActivityLogService: c.ActivityLogService,
	}
}

func (c *Container) GetHealthHandler() *handlers.HealthHandler {
	return handlers.NewHealthHandler(c.DB, c.RedisClient, c.Storage, c.Hub)
}

func (c *Container) GetWebSocketHandler() *websocketHandler.WebSocketHandler {
	return websocketHandler.NewWebSocketHandler(c.Hub, c.AnalysisService)
}
