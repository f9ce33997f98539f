package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	basehdl "bot_admin/internal/api/base/handler"
	"bot_admin/internal/api/middleware"
	"bot_admin/internal/metrics"
	"bot_admin/internal/rbac"
)

// ============================================================================
// ĐĂNG KÝ MIDDLEWARE THEO ROUTE
// ============================================================================
//
// Middleware xác thực và phân quyền được truyền trực tiếp cho từng route:
//    v1.Patch("/bot-config/minimal/:merchant_id", authMw, handler)
//
// Không dùng Group(prefix).Use(mw) cho middleware xác thực: Use khớp theo
// prefix nên middleware của nhóm này sẽ chạy cả cho route của nhóm khác
// cùng prefix (ví dụ route optional-auth bị chặn bởi auth bắt buộc).
//
// ============================================================================

// RoutePrefix chứa các prefix cho API routes
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix khởi tạo một instance mới của RoutePrefix
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router giữ các phụ thuộc dùng chung khi đăng ký route của từng domain
type Router struct {
	app         *fiber.App
	Auth        middleware.Authenticator
	Permissions *rbac.Table
	Metrics     *metrics.Metrics
}

// NewRouter tạo Router. permissions nil thì dùng bảng quyền mặc định.
func NewRouter(app *fiber.App, auth middleware.Authenticator, permissions *rbac.Table, m *metrics.Metrics) *Router {
	if permissions == nil {
		permissions = rbac.DefaultTable()
	}
	return &Router{app: app, Auth: auth, Permissions: permissions, Metrics: m}
}

// RequireAuth trả middleware bắt buộc đăng nhập
func (r *Router) RequireAuth() fiber.Handler {
	return middleware.AuthMiddleware(r.Auth)
}

// OptionalAuth trả middleware đọc actor nếu có token
func (r *Router) OptionalAuth() fiber.Handler {
	return middleware.OptionalAuthMiddleware(r.Auth)
}

// Can trả middleware kiểm tra quyền action trên module
func (r *Router) Can(module string, action rbac.Action) fiber.Handler {
	return middleware.RequirePermission(r.Permissions, module, action)
}

// RegisterFunc đăng ký route của một domain lên nhóm /api/v1
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes đăng ký /metrics (nếu có) và route của các domain dưới /api/v1
func SetupRoutes(app *fiber.App, r *Router, regs ...RegisterFunc) error {
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics.Handler()))
	}

	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}

// SystemRoutes đăng ký /system/health
func SystemRoutes(h *basehdl.SystemHandler) RegisterFunc {
	return func(v1 fiber.Router, _ *Router) error {
		v1.Get("/system/health", h.HandleHealth)
		return nil
	}
}
