package botconfighdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "bot_admin/internal/api/base/handler"
	botconfigdto "bot_admin/internal/api/botconfig/dto"
	botconfigsvc "bot_admin/internal/api/botconfig/service"
	"bot_admin/internal/api/middleware"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"
)

const resourceType = "bot_config"

// BotConfigHandler xử lý các request cấu hình bot của merchant
type BotConfigHandler struct {
	service *botconfigsvc.BotConfigService
}

// NewBotConfigHandler tạo handler
func NewBotConfigHandler(service *botconfigsvc.BotConfigService) *BotConfigHandler {
	return &BotConfigHandler{service: service}
}

// requireActor trả actor đã xác thực và hợp lệ theo tag validate, ngược lại ErrAuthRequired
func requireActor(c fiber.Ctx) (*botconfig.Actor, error) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return nil, common.ErrAuthRequired
	}
	if err := basehdl.ValidateInput(actor); err != nil {
		logger.WithRequest(c).WithError(err).Warn("Rejected actor with invalid identity")
		return nil, common.ErrAuthRequired
	}
	return actor, nil
}

// HandleList godoc
// GET /bot-config?page=&limit=&search=
func (h *BotConfigHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query botconfigdto.ListConfigQuery
		if err := c.Bind().Query(&query); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, common.ErrInvalidFormat.WithDetails(err.Error()))
		}
		if err := basehdl.ValidateInput(&query); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		result, err := h.service.List(c.Context(), query)
		return basehdl.HandleResponse(c, common.StatusOK, "Admin configurations retrieved successfully", result, err)
	})
}

// HandleCreate tạo cấu hình mới từ template
func (h *BotConfigHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, err := requireActor(c)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}

		var input botconfigdto.CreateConfigInput
		if len(c.Body()) > 0 {
			if err := basehdl.ParseRequestBody(c, &input); err != nil {
				return basehdl.HandleResponse(c, 0, "", nil, err)
			}
			if err := basehdl.ValidateInput(&input); err != nil {
				return basehdl.HandleResponse(c, 0, "", nil, err)
			}
		}

		merchantID := c.Params("merchant_id")
		doc, err := h.service.Create(c.Context(), merchantID, input, actor)
		if err == nil {
			logger.LogAction("create", c, resourceType, merchantID, nil)
		}
		return basehdl.HandleResponse(c, common.StatusCreated, "Admin configuration created successfully", doc, err)
	})
}

// HandleGetFull trả về document đầy đủ
func (h *BotConfigHandler) HandleGetFull(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		doc, err := h.service.GetFull(c.Context(), c.Params("merchant_id"))
		return basehdl.HandleResponse(c, common.StatusOK, "Admin configuration retrieved successfully", doc, err)
	})
}

// HandleGetMinimal trả về bản flatten key → giá trị hiện tại
func (h *BotConfigHandler) HandleGetMinimal(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		flat, err := h.service.GetMinimal(c.Context(), c.Params("merchant_id"))
		return basehdl.HandleResponse(c, common.StatusOK, "Minimal configuration retrieved successfully", flat, err)
	})
}

// HandleUpdateMinimal cập nhật nhiều field theo body phẳng {key: value}
func (h *BotConfigHandler) HandleUpdateMinimal(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, err := requireActor(c)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}

		updates := map[string]any{}
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&updates); err != nil {
				return basehdl.HandleResponse(c, 0, "", nil, common.ErrInvalidFormat.WithDetails(err.Error()))
			}
		}

		merchantID := c.Params("merchant_id")
		result, err := h.service.UpdateMinimal(c.Context(), merchantID, updates, actor)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		logger.LogAction("update", c, resourceType, merchantID, map[string]interface{}{
			"updates_applied": result.UpdatesApplied,
		})
		return basehdl.HandleResponse(c, common.StatusOK,
			fmt.Sprintf("Updated %d field(s) successfully", result.UpdatesApplied), result, nil)
	})
}

// HandleResetSelected reset các field trong body {"fields": [...]}
func (h *BotConfigHandler) HandleResetSelected(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, err := requireActor(c)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}

		var input botconfigdto.ResetFieldsInput
		if len(c.Body()) > 0 {
			if err := basehdl.ParseRequestBody(c, &input); err != nil {
				return basehdl.HandleResponse(c, 0, "", nil, err)
			}
		}

		merchantID := c.Params("merchant_id")
		result, err := h.service.ResetSelected(c.Context(), merchantID, input.Fields, actor)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		logger.LogAction("reset", c, resourceType, merchantID, map[string]interface{}{
			"fields":       input.Fields,
			"fields_reset": result.FieldsReset,
		})
		return basehdl.HandleResponse(c, common.StatusOK,
			fmt.Sprintf("Reset %d field(s) to factory values", result.FieldsReset), result, nil)
	})
}

// HandleResetAll reset toàn bộ field, không cần body
func (h *BotConfigHandler) HandleResetAll(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, err := requireActor(c)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}

		merchantID := c.Params("merchant_id")
		result, err := h.service.ResetAll(c.Context(), merchantID, actor)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		logger.LogAction("reset_all", c, resourceType, merchantID, map[string]interface{}{
			"fields_reset": result.FieldsReset,
		})
		return basehdl.HandleResponse(c, common.StatusOK,
			fmt.Sprintf("Reset %d field(s) to factory values", result.FieldsReset), result, nil)
	})
}

// HandleDelete xóa cấu hình của merchant
func (h *BotConfigHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor, err := requireActor(c)
		if err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}

		merchantID := c.Params("merchant_id")
		if err := h.service.Delete(c.Context(), merchantID, actor); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		logger.LogAction("delete", c, resourceType, merchantID, nil)
		return basehdl.HandleResponse(c, common.StatusOK, "Admin configuration deleted successfully",
			botconfigdto.DeleteResult{MerchantID: merchantID}, nil)
	})
}
