package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	"photocritic/interfaces/api/routes"
	"photocritic/pkg/config"
	"photocritic/pkg/di"
	"photocritic/pkg/logger"
)

// @title Photo Critic API
// @version 1.0
// @description Photo upload and AI critique service

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Admin token for log access

func main() {
	// logging settings are read before the container so startup is logged
	bootCfg, _ := config.LoadConfig()
	if err := logger.InitWithOptions(logger.Options{
		Dir:        bootCfg.Log.Dir,
		Console:    bootCfg.Log.Console,
		MinLevel:   logger.Level(bootCfg.Log.Level),
		MaxSizeMB:  bootCfg.Log.MaxSizeMB,
		MaxBackups: bootCfg.Log.MaxBackups,
		MaxAgeDays: bootCfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	logger.Startup("logger_init", "Logger initialized", map[string]interface{}{"dir": bootCfg.Log.Dir})

	container := di.NewContainer()
	if err := container.Initialize(); err != nil {
		logger.StartupError("container_init_failed", "Failed to initialize container", err, nil)
		os.Exit(1)
	}
	cfg := container.GetConfig()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      cfg.App.Name,
		// base64 uploads travel in the JSON body
		BodyLimit: cfg.Storage.MaxUploadBytes*4/3 + 64*1024,
	})

	setupGracefulShutdown(app, container)

	app.Use(middleware.RequestLogger())
	app.Use(middleware.CorsMiddleware(cfg.App.FrontendURL))

	if container.LocalStore != nil {
		app.Static(cfg.Storage.LocalURLPrefix, container.LocalStore.Dir())
	}

	h := handlers.NewHandlers(container.GetHandlerServices(), container.GetHealthHandler(), cfg)
	routes.SetupRoutes(app, h, container.GetWebSocketHandler(), cfg)

	port := cfg.App.Port
	logger.Startup("server_starting", "Server starting", map[string]interface{}{
		"port":        port,
		"environment": cfg.App.Env,
		"health":      fmt.Sprintf("http://localhost:%s/health", port),
		"api":         fmt.Sprintf("http://localhost:%s/api/v1", port),
		"metrics":     fmt.Sprintf("http://localhost:%s/metrics", port),
		"websocket":   fmt.Sprintf("ws://localhost:%s/ws", port),
	})

	if err := app.Listen(":" + port); err != nil {
		logger.StartupError("server_failed", "Server failed to start", err, nil)
		os.Exit(1)
	}
}

func setupGracefulShutdown(app *fiber.App, container *di.Container) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Startup("shutdown_started", "Gracefully shutting down", nil)

		if err := app.Shutdown(); err != nil {
			logger.StartupError("server_shutdown_failed", "Error shutting down server", err, nil)
		}
		if err := container.Cleanup(); err != nil {
			logger.StartupError("cleanup_failed", "Error during cleanup", err, nil)
		}

		logger.Startup("shutdown_complete", "Shutdown complete", nil)
		os.Exit(0)
	}()
}
