package middleware

import (
	"fmt"
	"strings"

	"bot_admin/internal/common"
	"bot_admin/internal/rbac"

	"github.com/gofiber/fiber/v3"
)

// RequirePermission chặn request nếu role của actor không có quyền action trên module.
// Phải đặt sau AuthMiddleware.
func RequirePermission(table *rbac.Table, module string, action rbac.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil || actor.Role == "" {
			return HandleErrorResponse(c, common.ErrAuthRequired)
		}
		if !table.HasRole(actor.Role) {
			return HandleErrorResponse(c, common.ErrUnknownRole)
		}
		if !table.Allows(actor.Role, module, action) {
			return HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthRole,
				fmt.Sprintf("Access denied: %s on %s", strings.ToUpper(string(action)), module),
				common.StatusForbidden,
				nil,
			))
		}
		return c.Next()
	}
}
