// Package initsvc chứa InitService dùng để khởi tạo dữ liệu ban đầu: tài khoản hệ thống và cấu hình bot mẫu.
// Tách ra package riêng để server (INITMODE) và CLI dùng chung.
package initsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	authsvc "bot_admin/internal/api/auth/service"
	botconfigdto "bot_admin/internal/api/botconfig/dto"
	botconfigsvc "bot_admin/internal/api/botconfig/service"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"
	"bot_admin/internal/rbac"
)

// SeedUser là một tài khoản hệ thống cần có sẵn
type SeedUser struct {
	FirstName string
	Email     string
	Password  string
	Role      string
}

// InitService khởi tạo dữ liệu ban đầu, các thao tác đều idempotent
type InitService struct {
	users   *authsvc.UserService
	configs *botconfigsvc.BotConfigService
	log     *logrus.Entry
}

// NewInitService tạo InitService. configs có thể nil nếu chỉ seed user.
func NewInitService(users *authsvc.UserService, configs *botconfigsvc.BotConfigService) *InitService {
	return &InitService{users: users, configs: configs, log: logger.WithModule("init")}
}

// SystemActor là actor ghi vào audit khi dữ liệu được tạo bởi hệ thống
func SystemActor(email string) *botconfig.Actor {
	return &botconfig.Actor{ID: "system", Name: "System", Email: email, Role: rbac.RoleSuperAdmin}
}

// InitUsers tạo các tài khoản hệ thống còn thiếu. Tài khoản không có mật khẩu bị bỏ qua.
// Trả về số tài khoản được tạo mới.
func (s *InitService) InitUsers(ctx context.Context, seeds []SeedUser) (int, error) {
	if s.users == nil {
		return 0, errors.New("user service is not configured")
	}
	created := 0
	for _, seed := range seeds {
		if seed.Email == "" || seed.Password == "" {
			s.log.WithField("role", seed.Role).Warn("Seed user has no email or password, skipped")
			continue
		}
		_, isNew, err := s.users.EnsureUser(ctx, seed.FirstName, seed.Email, seed.Password, seed.Role)
		if err != nil {
			return created, fmt.Errorf("seed user %s: %w", seed.Email, err)
		}
		if isNew {
			created++
			s.log.WithField("email", seed.Email).Info("Seed user created")
		}
	}
	return created, nil
}

// InitMerchantConfig tạo cấu hình từ template cho merchant nếu chưa có.
// Trả về true nếu document được tạo mới.
func (s *InitService) InitMerchantConfig(ctx context.Context, merchantID, description string, actor *botconfig.Actor) (bool, error) {
	if s.configs == nil {
		return false, errors.New("bot config service is not configured")
	}
	_, err := s.configs.Create(ctx, merchantID, botconfigdto.CreateConfigInput{Description: description}, actor)
	if errors.Is(err, common.ErrConfigExists) {
		s.log.WithField("merchant_id", merchantID).Info("Bot config already exists, skipped")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.WithField("merchant_id", merchantID).Info("Bot config seeded from template")
	return true, nil
}
