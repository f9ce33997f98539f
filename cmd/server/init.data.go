package main

import (
	"context"
	"time"

	"bot_admin/config"
	authsvc "bot_admin/internal/api/auth/service"
	"bot_admin/internal/api/initsvc"
	"bot_admin/internal/global"
	"bot_admin/internal/logger"
	"bot_admin/internal/rbac"
)

// SeedUsers trả về danh sách tài khoản hệ thống lấy từ cấu hình SEED_*
func SeedUsers(cfg *config.Configuration) []initsvc.SeedUser {
	return []initsvc.SeedUser{
		{FirstName: "Admin", Email: cfg.SeedAdminEmail, Password: cfg.SeedAdminPassword, Role: rbac.RoleSuperAdmin},
		{FirstName: "Finance", Email: cfg.SeedFinanceEmail, Password: cfg.SeedFinancePassword, Role: rbac.RoleFinance},
	}
}

// InitDefaultData tạo tài khoản hệ thống khi bật INITMODE.
// Cấu hình bot của merchant được tạo qua API hoặc lệnh `botadmin seed config`.
func InitDefaultData(users *authsvc.UserService) {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig
	if !cfg.InitMode {
		return
	}

	log.Info("[INIT] Seeding system users...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := initsvc.NewInitService(users, nil).InitUsers(ctx, SeedUsers(cfg))
	if err != nil {
		log.Fatalf("Failed to seed system users: %v", err)
	}
	log.WithField("created", created).Info("[INIT] System users ready")
}
