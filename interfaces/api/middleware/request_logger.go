package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"photocritic/pkg/logger"
	"photocritic/pkg/metrics"
)

// RequestLogger records every request in the api log category and in the
// Prometheus HTTP collectors. Routes are labelled by their pattern.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}
		metrics.RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		data := map[string]interface{}{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   status,
			"duration": elapsed.String(),
			"ip":       c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Warn(logger.CategoryAPI, "request", "Request failed", data)
		default:
			logger.Debug(logger.CategoryAPI, "request", "Request served", data)
		}
		return err
	}
}
