// Package models - claims JWT thuộc domain auth.
package models

import "github.com/dgrijalva/jwt-go"

// JwtToken chứa data được mã hóa trong token đăng nhập
type JwtToken struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.StandardClaims
}

// VerifyToken chứa email của tài khoản cần xác minh
type VerifyToken struct {
	Email string `json:"email"`
	jwt.StandardClaims
}
