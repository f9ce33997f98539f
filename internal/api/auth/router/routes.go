// Package router đăng ký các route thuộc domain auth: đăng nhập, xác minh và quản lý user.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "bot_admin/internal/api/auth/handler"
	apirouter "bot_admin/internal/api/router"
	"bot_admin/internal/rbac"
)

// Routes trả RegisterFunc gắn route của handler.
// UserService cũng là Authenticator của Router nên được tạo ở tầng khởi động.
func Routes(h *authhdl.UserHandler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		RegisterHandler(v1, r, h)
		return nil
	}
}

// RegisterHandler gắn các route /auth và /users
func RegisterHandler(v1 fiber.Router, r *apirouter.Router, h *authhdl.UserHandler) {
	v1.Post("/auth/login", h.HandleLogin)
	v1.Post("/auth/verify", h.HandleVerify)

	auth := r.RequireAuth()
	v1.Post("/users", auth, r.Can(rbac.ModuleUserManagement, rbac.Write), h.HandleCreateUser)
	v1.Get("/users", auth, r.Can(rbac.ModuleUserManagement, rbac.Read), h.HandleListUsers)
}
