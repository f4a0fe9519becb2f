package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Admin          AdminConfig
	Google         GoogleOAuthConfig
	Gemini         GeminiConfig
	Storage        StorageConfig
	Analysis       AnalysisConfig
	RateLimit      RateLimitConfig
	CircuitBreaker CircuitBreakerConfig
	Log            LogConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Env         string
	FrontendURL string
}

type DatabaseConfig struct {
	Driver     string // postgres, sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type AdminConfig struct {
	Token string // falls back to the JWT secret when empty
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type GeminiConfig struct {
	APIKey              string
	Model               string
	TimeoutSeconds      int
	TwoStageTranslation bool
	BaseLanguage        string
	DetectGenreOnUpload bool
	AllowPrivateFetch   bool // let image URLs reach private networks, development only
}

type StorageConfig struct {
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3UseSSL          bool
	S3PublicURL       string // public base URL for objects, defaults to the endpoint
	LocalDir          string
	LocalURLPrefix    string
	MaxUploadBytes    int
	MaxImageDimension int
}

// S3Enabled reports whether enough settings exist to talk to an object store.
func (s StorageConfig) S3Enabled() bool {
	return s.S3Endpoint != "" && s.S3Bucket != "" && s.S3AccessKey != ""
}

type AnalysisConfig struct {
	GuardBackend    string // memory, redis
	GuardTTLSeconds int
	CleanupCron     string
	CleanupKeep     int
	ActivityLogDays int
}

type RateLimitConfig struct {
	Enabled               bool
	MaxRequests           int
	WindowSeconds         int
	AuthMaxRequests       int
	AuthWindowSeconds     int
	AnalysisMaxRequests   int
	AnalysisWindowSeconds int
}

type CircuitBreakerConfig struct {
	MaxRequests     uint32
	IntervalSeconds int
	TimeoutSeconds  int
	MinRequests     uint32
	FailureRate     float64
}

type LogConfig struct {
	Dir        string
	Console    bool
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func LoadConfig() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Photo Critic API"),
			Port:        getEnv("APP_PORT", "3000"),
			Env:         getEnv("APP_ENV", "development"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "photocritic"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "photocritic.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/v1/auth/google/callback"),
		},
		Gemini: GeminiConfig{
			APIKey:              getEnv("GEMINI_API_KEY", ""),
			Model:               getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			TimeoutSeconds:      getEnvInt("GEMINI_TIMEOUT_SECONDS", 45),
			TwoStageTranslation: getEnvBool("GEMINI_TWO_STAGE_TRANSLATION", false),
			BaseLanguage:        getEnv("GEMINI_BASE_LANGUAGE", "en"),
			DetectGenreOnUpload: getEnvBool("GEMINI_DETECT_GENRE_ON_UPLOAD", true),
			AllowPrivateFetch:   getEnvBool("GEMINI_ALLOW_PRIVATE_FETCH", false),
		},
		Storage: StorageConfig{
			S3Endpoint:        getEnv("S3_ENDPOINT", ""),
			S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
			S3Bucket:          getEnv("S3_BUCKET", "photos"),
			S3Region:          getEnv("S3_REGION", ""),
			S3UseSSL:          getEnvBool("S3_USE_SSL", false),
			S3PublicURL:       getEnv("S3_PUBLIC_URL", ""),
			LocalDir:          getEnv("STORAGE_LOCAL_DIR", "uploads"),
			LocalURLPrefix:    getEnv("STORAGE_LOCAL_URL_PREFIX", "/uploads"),
			MaxUploadBytes:    getEnvInt("STORAGE_MAX_UPLOAD_BYTES", 20*1024*1024),
			MaxImageDimension: getEnvInt("STORAGE_MAX_IMAGE_DIMENSION", 2048),
		},
		Analysis: AnalysisConfig{
			GuardBackend:    getEnv("ANALYSIS_GUARD_BACKEND", "memory"),
			GuardTTLSeconds: getEnvInt("ANALYSIS_GUARD_TTL_SECONDS", 120),
			CleanupCron:     getEnv("ANALYSIS_CLEANUP_CRON", "0 3 * * *"),
			CleanupKeep:     getEnvInt("ANALYSIS_CLEANUP_KEEP", 1),
			ActivityLogDays: getEnvInt("ACTIVITY_LOG_RETENTION_DAYS", 90),
		},
		RateLimit: RateLimitConfig{
			Enabled:               getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests:           getEnvInt("RATE_LIMIT_MAX", 120),
			WindowSeconds:         getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			AuthMaxRequests:       getEnvInt("RATE_LIMIT_AUTH_MAX", 10),
			AuthWindowSeconds:     getEnvInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60),
			AnalysisMaxRequests:   getEnvInt("RATE_LIMIT_ANALYSIS_MAX", 10),
			AnalysisWindowSeconds: getEnvInt("RATE_LIMIT_ANALYSIS_WINDOW_SECONDS", 60),
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:     uint32(getEnvInt("CB_MAX_REQUESTS_HALF_OPEN", 1)),
			IntervalSeconds: getEnvInt("CB_INTERVAL_SECONDS", 60),
			TimeoutSeconds:  getEnvInt("CB_TIMEOUT_SECONDS", 30),
			MinRequests:     uint32(getEnvInt("CB_MIN_REQUESTS", 5)),
			FailureRate:     getEnvFloat("CB_FAILURE_RATE", 0.6),
		},
		Log: LogConfig{
			Dir:        getEnv("LOG_DIR", "logs"),
			Console:    getEnvBool("LOG_CONSOLE", true),
			Level:      getEnv("LOG_LEVEL", "DEBUG"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
