package basehdl

import (
	"context"
	"time"

	"bot_admin/internal/common"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo"
)

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	mongo *mongo.Client
	redis *redis.Client
}

// NewSystemHandler tạo SystemHandler. Client nil nghĩa là dịch vụ đó chưa khởi tạo hoặc bị tắt.
func NewSystemHandler(mongoClient *mongo.Client, redisClient *redis.Client) *SystemHandler {
	return &SystemHandler{mongo: mongoClient, redis: redisClient}
}

// HandleHealth kiểm tra tình trạng API, MongoDB và Redis
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	healthy := true
	if h.mongo == nil {
		services["database"] = "not_initialized"
		healthy = false
	} else if err := h.mongo.Ping(ctx, nil); err != nil {
		services["database"] = "error"
		healthData["database_error"] = err.Error()
		healthy = false
	} else {
		services["database"] = "ok"
	}

	if h.redis == nil {
		services["cache"] = "memory"
	} else if err := h.redis.Ping(ctx).Err(); err != nil {
		// cache lỗi không làm hệ thống ngừng phục vụ
		services["cache"] = "error"
		healthData["status"] = "degraded"
	} else {
		services["cache"] = "ok"
	}

	if !healthy {
		healthData["status"] = "degraded"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"success": false,
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}
	return HandleResponse(c, common.StatusOK, common.MsgSuccess, healthData, nil)
}
