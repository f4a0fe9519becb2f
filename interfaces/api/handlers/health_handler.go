package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"photocritic/infrastructure/redis"
	"photocritic/infrastructure/storage"
	"photocritic/infrastructure/websocket"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.RedisClient
	storage     *storage.Storage
	hub         *websocket.Hub
}

// NewHealthHandler creates a new health handler. Nil components report
// "unavailable".
func NewHealthHandler(
	db *gorm.DB,
	redisClient *redis.RedisClient,
	store *storage.Storage,
	hub *websocket.Hub,
) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		storage:     store,
		hub:         hub,
	}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok", "error", "unavailable"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse represents detailed health check response
type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// DetailedHealth godoc
// @Summary Get detailed system health
// @Description Database failure is unhealthy (503); any other failing component is degraded
// @Tags Health
// @Produce json
// @Success 200 {object} DetailedHealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	response := DetailedHealthResponse{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	dbHealth := h.checkDatabase(ctx)
	response.Components["database"] = dbHealth
	response.Components["redis"] = h.checkRedis(ctx)
	for name, health := range h.checkStorage(ctx) {
		response.Components["storage_"+name] = health
	}
	if h.hub != nil {
		response.Components["websocket"] = ComponentHealth{
			Status:  "ok",
			Message: strconv.Itoa(h.hub.ClientCount()) + " clients",
		}
	}

	response.Status = "healthy"
	for _, component := range response.Components {
		if component.Status == "error" {
			response.Status = "degraded"
		}
	}
	if dbHealth.Status != "ok" {
		response.Status = "unhealthy"
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}
	return c.Status(statusCode).JSON(response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.db == nil {
		return ComponentHealth{Status: "error", Message: "Database not configured"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentHealth{Status: "error", Message: "Failed to get database connection: " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Database ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redisClient == nil {
		return ComponentHealth{Status: "unavailable", Message: "Redis not configured"}
	}
	if err := h.redisClient.Ping(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Redis ping failed: " + err.Error()}
	}

	return ComponentHealth{Status: "ok", Message: "Connected", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkStorage(ctx context.Context) map[string]ComponentHealth {
	out := map[string]ComponentHealth{}
	if h.storage == nil {
		return out
	}
	for name, err := range h.storage.HealthCheck(ctx) {
		if err != nil {
			out[name] = ComponentHealth{Status: "error", Message: err.Error()}
			continue
		}
		out[name] = ComponentHealth{Status: "ok"}
	}
	return out
}
