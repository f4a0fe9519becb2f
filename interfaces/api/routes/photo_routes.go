package routes

import (
	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	"photocritic/pkg/config"
)

func SetupPhotoRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	photos := api.Group("/photos")

	photos.Post("/upload", middleware.Optional(secret), h.Photo.Upload)
	photos.Get("/:id", middleware.Optional(secret), h.Photo.GetPhoto)
	photos.Patch("/:id/visibility", middleware.Protected(secret), h.Photo.SetVisibility)
}

func SetupAnalysisRoutes(api fiber.Router, h *handlers.Handlers, secret string, rl *config.RateLimitConfig) {
	analyses := api.Group("/analyses")

	analyses.Post("/", middleware.Optional(secret), middleware.AnalysisRateLimiter(rl), h.Analysis.Analyze)
	analyses.Get("/personas", h.Analysis.GetPersonas)
	analyses.Get("/with-photos", middleware.Optional(secret), h.Analysis.ListWithPhotos)
	analyses.Get("/by-camera/:model", h.Analysis.ListByCamera)

	analyses.Get("/:id", middleware.Optional(secret), h.Analysis.GetAnalysis)
	analyses.Patch("/:id/visibility", middleware.Protected(secret), h.Analysis.SetVisibility)
	analyses.Delete("/:id", middleware.Protected(secret), h.Analysis.Delete)

	analyses.Post("/:id/opinions", middleware.Protected(secret), h.Opinion.Submit)
	analyses.Get("/:id/opinions", h.Opinion.List)
}

func SetupCameraModelRoutes(api fiber.Router, h *handlers.Handlers, secret string) {
	cameras := api.Group("/camera-models")

	cameras.Get("/", middleware.Optional(secret), h.CameraModel.List)

	protected, adminOnly := middleware.Protected(secret), middleware.AdminOnly()
	cameras.Post("/", protected, adminOnly, h.CameraModel.Create)
	cameras.Put("/:id", protected, adminOnly, h.CameraModel.Update)
	cameras.Delete("/:id", protected, adminOnly, h.CameraModel.Delete)
}
