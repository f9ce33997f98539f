package authsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authdto "bot_admin/internal/api/auth/dto"
	models "bot_admin/internal/api/auth/models"
	basemodels "bot_admin/internal/api/base/models"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"
	"bot_admin/internal/notification"
	"bot_admin/internal/rbac"
	"bot_admin/internal/utility"
)

// actorCacheTTL là thời gian giữ user đã xác thực trong bộ nhớ
const actorCacheTTL = time.Minute

// UserService quản lý tài khoản quản trị, đăng nhập và xác thực token
type UserService struct {
	store       UserStore
	tokens      *TokenService
	mailer      notification.Mailer
	permissions *rbac.Table
	actors      *utility.Cache
}

// NewUserService tạo UserService. mailer nil thì email chỉ được ghi log.
func NewUserService(store UserStore, tokens *TokenService, mailer notification.Mailer, permissions *rbac.Table) *UserService {
	if mailer == nil {
		mailer = &notification.LogMailer{}
	}
	if permissions == nil {
		permissions = rbac.DefaultTable()
	}
	return &UserService{
		store:       store,
		tokens:      tokens,
		mailer:      mailer,
		permissions: permissions,
		actors:      utility.NewCache(actorCacheTTL, actorCacheTTL),
	}
}

// Close dừng cache actor
func (s *UserService) Close() {
	s.actors.Stop()
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// defaultPassword sinh mật khẩu tạm 12 ký tự gửi kèm email chào mừng
func defaultPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Create tạo tài khoản chưa xác minh và gửi email xác minh có hạn.
// Lỗi gửi email chỉ được ghi log, tài khoản vẫn được tạo.
func (s *UserService) Create(ctx context.Context, input *authdto.UserCreateInput, creator *botconfig.Actor) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrUserExists
	} else if err != common.ErrUserNotFound {
		return nil, err
	}

	tempPassword := defaultPassword()
	hash, err := hashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	verifyToken, expires, err := s.tokens.IssueVerify(email)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	user := &models.User{
		FirstName:               strings.TrimSpace(input.FirstName),
		LastName:                strings.TrimSpace(input.LastName),
		Email:                   email,
		Password:                hash,
		Role:                    input.Role,
		Status:                  models.UserStatusNotVerified,
		TenantID:                input.TenantID,
		IsSuperAdmin:            input.IsSuperAdmin || input.Role == rbac.RoleSuperAdmin,
		IsSystemUser:            input.IsSystemUser,
		IsDefaultPassword:       true,
		VerificationToken:       verifyToken,
		VerificationTokenExpiry: &expires,
		Permissions:             s.permissions.Permissions(input.Role),
	}
	if creator != nil {
		user.CreatedBy = creator.ID
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	msg := notification.VerificationEmail{
		To:              email,
		FirstName:       user.FirstName,
		Token:           verifyToken,
		DefaultPassword: tempPassword,
		ExpiresInDays:   int(s.tokens.VerifyTTL().Hours() / 24),
	}
	if err := s.mailer.SendVerification(ctx, msg); err != nil {
		logger.WithModule("auth").WithError(err).WithField("email", email).Error("Failed to send verification email")
	}
	return user, nil
}

// List trả về danh sách user theo bộ lọc
func (s *UserService) List(ctx context.Context, query authdto.UserListQuery) (*basemodels.PaginateResult[models.User], error) {
	return s.store.List(ctx, query)
}

// Login kiểm tra mật khẩu, ghi nhận lần đăng nhập sai và cấp token.
// Email không tồn tại và sai mật khẩu trả cùng một lỗi.
func (s *UserService) Login(ctx context.Context, input *authdto.LoginInput) (*authdto.LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if err == common.ErrUserNotFound {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		if _, err := s.store.RecordLoginFailure(ctx, user.ID, now); err != nil {
			logger.WithModule("auth").WithError(err).Warn("Failed to record failed login")
		}
		return nil, common.ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Account is "+user.Status, common.StatusForbidden, nil)
	}

	token, expires, err := s.tokens.IssueLogin(user)
	if err != nil {
		return nil, fmt.Errorf("issue login token: %w", err)
	}
	user.LastLogin = &now
	user.FailedAttempts = 0
	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}
	return &authdto.LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Verify kích hoạt tài khoản bằng token xác minh và đặt mật khẩu mới. Token chỉ dùng được một lần.
func (s *UserService) Verify(ctx context.Context, input *authdto.VerifyInput) (*authdto.VerifyResult, error) {
	claims, err := s.tokens.ParseVerify(input.Token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified && user.VerificationToken == "" {
		return nil, common.ErrVerifyTokenUsed
	}
	if user.VerificationToken != "" && user.VerificationToken != input.Token {
		return nil, common.ErrVerifyTokenMismatch
	}

	now := time.Now().UTC()
	if user.VerificationTokenExpiry != nil && user.VerificationTokenExpiry.Before(now) {
		return nil, common.ErrVerifyTokenExpired
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	user.IsVerified = true
	user.IsDefaultPassword = false
	user.Status = models.UserStatusActive
	user.VerificationToken = ""
	user.VerificationTokenExpiry = nil
	user.PasswordLastChanged = &now
	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}
	s.actors.Delete(user.ID.Hex())
	return &authdto.VerifyResult{Email: user.Email}, nil
}

// Authenticate kiểm tra token đăng nhập và trả về actor. User được cache ngắn hạn theo id.
func (s *UserService) Authenticate(ctx context.Context, token string) (*botconfig.Actor, error) {
	claims, err := s.tokens.ParseLogin(token)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.actors.Get(claims.UserID); ok {
		if actor, ok := cached.(*botconfig.Actor); ok {
			return actor, nil
		}
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == common.ErrUserNotFound {
			return nil, common.ErrTokenInvalid
		}
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, common.ErrAccountInactive
	}

	actor := &botconfig.Actor{ID: user.ID.Hex(), Name: user.FullName(), Email: user.Email, Role: user.Role}
	s.actors.Set(claims.UserID, actor)
	return actor, nil
}

// EnsureUser tạo user đã kích hoạt với mật khẩu cho trước nếu email chưa tồn tại. Dùng khi seed.
func (s *UserService) EnsureUser(ctx context.Context, firstName, email, password, role string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.store.FindByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if err != common.ErrUserNotFound {
		return nil, false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		FirstName:           firstName,
		Email:               email,
		Password:            hash,
		Role:                role,
		Status:              models.UserStatusActive,
		IsSuperAdmin:        role == rbac.RoleSuperAdmin,
		IsSystemUser:        true,
		IsVerified:          true,
		PasswordLastChanged: &now,
		Permissions:         s.permissions.Permissions(role),
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
