package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/taskrally/taskrally-backend/backend/handlers"
)

// LoggingMiddleware logs HTTP requests in a structured format
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		logger := slog.With(
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", statusCode),
			slog.Duration("duration", duration),
			slog.String("ip", c.IP()),
		)

		if user, ok := handlers.CurrentUser(c); ok {
			logger = logger.With(slog.Int64("user_id", user.ID))
		}

		if err != nil {
			logger = logger.With(slog.String("error", err.Error()))
		}

		switch {
		case statusCode >= 500:
			logger.Error("HTTP request failed")
		case statusCode >= 400:
			logger.Warn("HTTP request rejected")
		default:
			logger.Info("HTTP request processed")
		}

		return err
	}
}
