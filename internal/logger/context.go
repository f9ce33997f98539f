package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// LocalRequestID là key trong c.Locals do requestid middleware ghi vào
const LocalRequestID = "requestid"

// WithRequest trả về logger entry với thông tin request từ Fiber (request_id, method, path, ip)
func WithRequest(c fiber.Ctx) *logrus.Entry {
	entry := GetAppLogger().WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
	if requestID := RequestID(c); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}

// RequestID lấy request ID từ Locals, header request, hoặc header response
func RequestID(c fiber.Ctx) string {
	if rid, ok := c.Locals(LocalRequestID).(string); ok && rid != "" {
		return rid
	}
	if rid := c.Get("X-Request-ID"); rid != "" {
		return rid
	}
	return c.GetRespHeader("X-Request-ID")
}

// WithFields trả về logger entry với các fields bổ sung
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields(fields))
}

// WithError trả về logger entry với error
func WithError(err error) *logrus.Entry {
	return GetAppLogger().WithError(err)
}

// WithModule trả về logger entry với module name (ví dụ: "botconfig", "auth")
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}
