package middleware

import (
	"time"

	"bot_admin/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

// Metrics ghi nhận số request và thời gian xử lý theo route đã khớp
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			status, _ = ErrorBody(err)
		}
		m.ObserveHTTP(c.Method(), route, status, time.Since(start))
		return err
	}
}
