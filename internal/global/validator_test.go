package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomValidators(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name  string
		value string
		tag   string
		valid bool
	}{
		{"màu 6 ký tự", "#1E40AF", "bot_color", true},
		{"màu 3 ký tự", "#fff", "bot_color", true},
		{"màu 4 ký tự bị từ chối", "#ffff", "bot_color", false},
		{"tên màu bị từ chối", "blue", "bot_color", false},
		{"chuỗi an toàn", "Hello there", "no_xss", true},
		{"chuỗi có script", "<script>alert(1)</script>", "no_xss", false},
		{"mật khẩu mạnh", "Admin@123", "strong_password", true},
		{"mật khẩu yếu", "password", "strong_password", false},
		{"vai trò hợp lệ", "merchant_admin", "user_role", true},
		{"vai trò không hợp lệ", "root", "user_role", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
