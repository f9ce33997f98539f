package global

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate là validator dùng chung, khởi tạo qua InitValidator
var Validate *validator.Validate

var validatorOnce sync.Once

// HexColorPattern chỉ chấp nhận #RGB hoặc #RRGGBB
var HexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// UserRoles là danh sách vai trò hợp lệ của tài khoản quản trị
var UserRoles = []string{"super_admin", "merchant_admin", "finance"}

// InitValidator khởi tạo validator và đăng ký các custom tag. Gọi nhiều lần vẫn an toàn.
func InitValidator() {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("bot_color", validateBotColor)
		_ = v.RegisterValidation("no_xss", validateNoXSS)
		_ = v.RegisterValidation("strong_password", validateStrongPassword)
		_ = v.RegisterValidation("user_role", validateUserRole)
		Validate = v
	})
}

// GetValidator trả về validator dùng chung, tự khởi tạo nếu chưa có
func GetValidator() *validator.Validate {
	InitValidator()
	return Validate
}

// validateBotColor kiểm tra mã màu hex dạng #RGB hoặc #RRGGBB
func validateBotColor(fl validator.FieldLevel) bool {
	return HexColorPattern.MatchString(fl.Field().String())
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}
	value := strings.ToLower(fl.Field().String())
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateStrongPassword yêu cầu tối thiểu 8 ký tự và ít nhất 3 trong 4 nhóm: hoa, thường, số, ký tự đặc biệt
func validateStrongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range value {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	conditions := 0
	for _, ok := range []bool{hasUpper, hasLower, hasNumber, hasSpecial} {
		if ok {
			conditions++
		}
	}
	return conditions >= 3
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, role := range UserRoles {
		if value == role {
			return true
		}
	}
	return false
}
