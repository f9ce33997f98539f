package authdto

import (
	"time"

	models "bot_admin/internal/api/auth/models"
)

// UserCreateInput đầu vào tạo tài khoản quản trị
type UserCreateInput struct {
	FirstName    string `json:"firstName" validate:"required,min=2,max=100,no_xss"`
	LastName     string `json:"lastName" validate:"omitempty,max=100,no_xss"`
	Email        string `json:"email" validate:"required,email"`
	Role         string `json:"role" validate:"required,user_role"`
	TenantID     string `json:"tenant_id" validate:"omitempty,max=100"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	IsSystemUser bool   `json:"is_system_user"`
}

// UserListQuery bộ lọc danh sách người dùng
type UserListQuery struct {
	Role     string `query:"role" validate:"omitempty,user_role"`
	Status   string `query:"status" validate:"omitempty,oneof=active suspended deactivated not_verified"`
	TenantID string `query:"tenant_id"`
	Search   string `query:"search" validate:"omitempty,max=100"`
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit" validate:"omitempty,max=100"`
}

// LoginInput đầu vào đăng nhập
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyInput đầu vào xác minh tài khoản và đặt mật khẩu mới
type VerifyInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,strong_password"`
}

// LoginResult kết quả đăng nhập
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// VerifyResult kết quả xác minh
type VerifyResult struct {
	Email string `json:"email"`
}
