package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

// LogHandler serves the categorized log files. Routes sit behind the admin
// token middleware.
type LogHandler struct{}

func NewLogHandler() *LogHandler {
	return &LogHandler{}
}

// GetLogs returns log entries
// @Summary Get application logs
// @Tags Admin
// @Security AdminToken
// @Param lines query int false "Number of lines" default(100)
// @Param level query string false "Filter by level (DEBUG, INFO, WARN, ERROR)"
// @Param category query string false "Filter by category (auth, api, db, analysis, storage, websocket, scheduler, startup)"
// @Param search query string false "Search in message/action"
// @Router /admin/logs [get]
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	opts := logger.ReadLogsOptions{
		Lines:    c.QueryInt("lines", 100),
		Level:    logger.Level(c.Query("level")),
		Category: logger.Category(c.Query("category")),
		Search:   c.Query("search"),
	}

	entries, err := logger.ReadLogs(opts)
	if err != nil {
		return handleServiceError(c, "read_logs", err)
	}

	return utils.SuccessResponse(c, "Logs retrieved", fiber.Map{
		"entries": entries,
		"count":   len(entries),
		"filters": fiber.Map{
			"lines":    opts.Lines,
			"level":    opts.Level,
			"category": opts.Category,
			"search":   opts.Search,
		},
	})
}

// GetLogFiles returns list of log files
// @Summary List log files
// @Tags Admin
// @Security AdminToken
// @Router /admin/logs/files [get]
func (h *LogHandler) GetLogFiles(c *fiber.Ctx) error {
	files, err := logger.ListLogFiles()
	if err != nil {
		return handleServiceError(c, "list_log_files", err)
	}
	return utils.SuccessResponse(c, "Log files retrieved", fiber.Map{
		"files":  files,
		"logDir": logger.GetLogDir(),
	})
}

// GetLogStats returns log statistics
// @Summary Get log statistics
// @Tags Admin
// @Security AdminToken
// @Router /admin/logs/stats [get]
func (h *LogHandler) GetLogStats(c *fiber.Ctx) error {
	entries, _ := logger.ReadLogs(logger.ReadLogsOptions{Lines: 1000})

	byLevel := map[string]int{"DEBUG": 0, "INFO": 0, "WARN": 0, "ERROR": 0}
	byCategory := map[string]int{}
	for _, entry := range entries {
		byLevel[string(entry.Level)]++
		byCategory[string(entry.Category)]++
	}

	var totalSize int64
	files, _ := logger.ListLogFiles()
	for _, f := range files {
		if info, err := os.Stat(filepath.Join(logger.GetLogDir(), f)); err == nil {
			totalSize += info.Size()
		}
	}

	return utils.SuccessResponse(c, "Log stats retrieved", fiber.Map{
		"totalEntries":   len(entries),
		"byLevel":        byLevel,
		"byCategory":     byCategory,
		"totalFiles":     len(files),
		"totalSizeBytes": totalSize,
	})
}
