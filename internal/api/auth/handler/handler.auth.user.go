package authhdl

import (
	"github.com/gofiber/fiber/v3"

	authdto "bot_admin/internal/api/auth/dto"
	authsvc "bot_admin/internal/api/auth/service"
	basehdl "bot_admin/internal/api/base/handler"
	"bot_admin/internal/api/middleware"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"
)

// UserHandler xử lý đăng nhập, xác minh và quản lý tài khoản quản trị
type UserHandler struct {
	service *authsvc.UserService
}

// NewUserHandler tạo handler
func NewUserHandler(service *authsvc.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// HandleLogin POST /auth/login
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.LoginInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		result, err := h.service.Login(c.Context(), &input)
		if err != nil {
			logger.WithRequest(c).WithField("email", input.Email).Warn("[AUTH] Login failed")
		}
		return basehdl.HandleResponse(c, common.StatusOK, "Login successful", result, err)
	})
}

// HandleVerify POST /auth/verify
func (h *UserHandler) HandleVerify(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.VerifyInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		result, err := h.service.Verify(c.Context(), &input)
		return basehdl.HandleResponse(c, common.StatusOK, "Account verified successfully", result, err)
	})
}

// HandleCreateUser POST /users
func (h *UserHandler) HandleCreateUser(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.UserCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		user, err := h.service.Create(c.Context(), &input, middleware.ActorFrom(c))
		if err == nil {
			logger.LogAction("create", c, "user", user.ID.Hex(), map[string]interface{}{
				"email": user.Email,
				"role":  user.Role,
			})
		}
		return basehdl.HandleResponse(c, common.StatusCreated, "User created, verification email sent", user, err)
	})
}

// HandleListUsers GET /users?role=&status=&tenant_id=&search=&page=&limit=
func (h *UserHandler) HandleListUsers(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query authdto.UserListQuery
		if err := c.Bind().Query(&query); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, common.ErrInvalidFormat.WithDetails(err.Error()))
		}
		if err := basehdl.ValidateInput(&query); err != nil {
			return basehdl.HandleResponse(c, 0, "", nil, err)
		}
		result, err := h.service.List(c.Context(), query)
		return basehdl.HandleResponse(c, common.StatusOK, "Users retrieved successfully", result, err)
	})
}
