// Package router đăng ký các route cấu hình bot dưới /api/v1/bot-config.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"bot_admin/config"
	botconfighdl "bot_admin/internal/api/botconfig/handler"
	botconfigsvc "bot_admin/internal/api/botconfig/service"
	apirouter "bot_admin/internal/api/router"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/cache"
	"bot_admin/internal/common"
	"bot_admin/internal/global"
	"bot_admin/internal/logger"
	"bot_admin/internal/rbac"
)

const prefix = "/bot-config"

// Register tạo service từ collection đã đăng ký trong global rồi gắn route
func Register(v1 fiber.Router, r *apirouter.Router) error {
	collection, ok := global.RegistryCollections.Get(global.MongoDB_ColNames.BotConfigs)
	if !ok {
		return fmt.Errorf("failed to get bot_configs collection: %w", common.ErrNotFound)
	}

	cfg := global.MongoDB_ServerConfig
	var tmpl *botconfig.Document
	if cfg != nil && cfg.SeedTemplatePath != "" {
		loaded, err := botconfig.LoadTemplate(config.ResolvePath(cfg.SeedTemplatePath))
		if err != nil {
			// Thiếu template chỉ chặn việc tạo cấu hình mới
			logger.WithModule("botconfig").WithError(err).Warn("Bot config template not loaded")
		} else {
			tmpl = loaded
			logger.WithModule("botconfig").WithFields(map[string]interface{}{
				"sections": tmpl.Sections.Keys(),
				"fields":   tmpl.FieldCount(),
			}).Info("Bot config template loaded")
		}
	}

	minimal := cache.NewMinimalCache(global.Redis_Client, cfg.MinimalCacheDuration())

	service := botconfigsvc.NewBotConfigService(botconfigsvc.NewMongoRepository(collection), minimal, r.Metrics, tmpl)
	RegisterHandler(v1, r, botconfighdl.NewBotConfigHandler(service))
	return nil
}

// RegisterHandler gắn route của handler. Route minimal đăng ký trước route /:merchant_id.
func RegisterHandler(v1 fiber.Router, r *apirouter.Router, h *botconfighdl.BotConfigHandler) {
	auth := r.RequireAuth()
	optionalAuth := r.OptionalAuth()

	g := v1.Group(prefix)
	g.Get("/minimal/:merchant_id", optionalAuth, h.HandleGetMinimal)
	g.Patch("/minimal/:merchant_id", auth, h.HandleUpdateMinimal)
	g.Post("/minimal/:merchant_id/reset", auth, h.HandleResetSelected)
	g.Post("/minimal/:merchant_id/reset-all", auth, h.HandleResetAll)

	g.Get("/", auth, r.Can(rbac.ModuleAdminPanel, rbac.Read), h.HandleList)
	g.Post("/:merchant_id", auth, r.Can(rbac.ModuleAdminPanel, rbac.Write), h.HandleCreate)
	g.Get("/:merchant_id", optionalAuth, h.HandleGetFull)
	g.Delete("/:merchant_id", auth, h.HandleDelete)
}
