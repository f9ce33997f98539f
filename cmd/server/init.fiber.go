package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	authhdl "bot_admin/internal/api/auth/handler"
	authrouter "bot_admin/internal/api/auth/router"
	authsvc "bot_admin/internal/api/auth/service"
	basehdl "bot_admin/internal/api/base/handler"
	botconfigrouter "bot_admin/internal/api/botconfig/router"
	"bot_admin/internal/api/middleware"
	apirouter "bot_admin/internal/api/router"
	"bot_admin/internal/common"
	"bot_admin/internal/global"
	"bot_admin/internal/logger"
	"bot_admin/internal/metrics"
	"bot_admin/internal/notification"
	"bot_admin/internal/rbac"
)

// NewUserService tạo UserService trên collection users theo cấu hình JWT và SMTP
func NewUserService() (*authsvc.UserService, error) {
	cfg := global.MongoDB_ServerConfig
	collection, err := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Users)
	if err != nil {
		return nil, err
	}
	tokens := authsvc.NewTokenService(cfg.JwtSecret,
		time.Duration(cfg.JwtExpiresHours)*time.Hour,
		time.Duration(cfg.VerifyTokenExpiresHours)*time.Hour)
	return authsvc.NewUserService(authsvc.NewMongoUserStore(collection), tokens, notification.NewMailer(cfg), rbac.DefaultTable()), nil
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết và đăng ký route
func InitFiberApp(users *authsvc.UserService) *fiber.App {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	app := fiber.New(fiber.Config{
		AppName:       "Bot Admin API",
		ServerHeader:  "Bot Admin API",
		StrictRouting: false,
		CaseSensitive: true,
		UnescapePath:  true,

		BodyLimit:       1 * 1024 * 1024, // Cấu hình bot nhỏ, 1MB là đủ
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		// Lỗi lọt ra ngoài handler (route không tồn tại, body quá lớn, ...) dùng chung envelope
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return middleware.HandleErrorResponse(c, err)
		},
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID để trace log
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// 2. CORS phải đặt sớm để xử lý preflight
	var allowOrigins []string
	if cfg.CORS_Origins == "*" {
		allowOrigins = []string{"*"}
	} else {
		for _, origin := range strings.Split(cfg.CORS_Origins, ",") {
			allowOrigins = append(allowOrigins, strings.TrimSpace(origin))
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.EnableTLS {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	})

	// 4. Rate limit theo IP
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return middleware.HandleErrorResponse(c, common.NewError(common.ErrCodeBusinessOperation,
					"Too many requests, please try again later", fiber.StatusTooManyRequests, nil))
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/system/health" || c.Path() == "/metrics" || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	// 6. Metrics HTTP
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		app.Use(middleware.Metrics(m))
	}

	r := apirouter.NewRouter(app, users, rbac.DefaultTable(), m)
	err := apirouter.SetupRoutes(app, r,
		apirouter.SystemRoutes(basehdl.NewSystemHandler(global.MongoDB_Session, global.Redis_Client)),
		authrouter.Routes(authhdl.NewUserHandler(users)),
		botconfigrouter.Register,
	)
	if err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}
	return app
}
