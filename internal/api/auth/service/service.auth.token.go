// Package authsvc - đăng nhập, xác minh tài khoản và xác thực token.
package authsvc

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	models "bot_admin/internal/api/auth/models"
	"bot_admin/internal/common"
)

// TokenService ký và kiểm tra JWT (HS256)
type TokenService struct {
	secret    []byte
	loginTTL  time.Duration
	verifyTTL time.Duration
}

// NewTokenService tạo TokenService. loginTTL là thời hạn token đăng nhập, verifyTTL của token xác minh.
func NewTokenService(secret string, loginTTL, verifyTTL time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), loginTTL: loginTTL, verifyTTL: verifyTTL}
}

// VerifyTTL trả về thời hạn token xác minh
func (s *TokenService) VerifyTTL() time.Duration {
	return s.verifyTTL
}

func (s *TokenService) standardClaims(subject string, ttl time.Duration) (jwt.StandardClaims, time.Time) {
	issued := time.Now()
	expires := issued.Add(ttl)
	return jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  issued.Unix(),
		ExpiresAt: expires.Unix(),
	}, expires
}

// IssueLogin tạo token đăng nhập cho user
func (s *TokenService) IssueLogin(user *models.User) (string, time.Time, error) {
	std, expires := s.standardClaims(user.ID.Hex(), s.loginTTL)
	claims := &models.JwtToken{UserID: user.ID.Hex(), Role: user.Role, StandardClaims: std}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// IssueVerify tạo token xác minh tài khoản theo email
func (s *TokenService) IssueVerify(email string) (string, time.Time, error) {
	std, expires := s.standardClaims(email, s.verifyTTL)
	claims := &models.VerifyToken{Email: email, StandardClaims: std}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// ParseLogin kiểm tra chữ ký và hạn của token đăng nhập
func (s *TokenService) ParseLogin(token string) (*models.JwtToken, error) {
	claims := &models.JwtToken{}
	if err := s.parse(token, claims); err != nil {
		if isExpired(err) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// ParseVerify kiểm tra chữ ký và hạn của token xác minh
func (s *TokenService) ParseVerify(token string) (*models.VerifyToken, error) {
	claims := &models.VerifyToken{}
	if err := s.parse(token, claims); err != nil {
		if isExpired(err) {
			return nil, common.ErrVerifyTokenExpired
		}
		return nil, common.ErrVerifyTokenInvalid
	}
	if claims.Email == "" {
		return nil, common.ErrVerifyTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	return err
}

func isExpired(err error) bool {
	var ve *jwt.ValidationError
	return errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0
}
