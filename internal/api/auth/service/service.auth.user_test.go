package authsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdto "bot_admin/internal/api/auth/dto"
	models "bot_admin/internal/api/auth/models"
	"bot_admin/internal/common"
	"bot_admin/internal/notification"
	"bot_admin/internal/rbac"
)

type captureMailer struct {
	sent []notification.VerificationEmail
	err  error
}

func (m *captureMailer) SendVerification(_ context.Context, msg notification.VerificationEmail) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newTestUserService(t *testing.T, mailer notification.Mailer) (*UserService, *MemoryUserStore) {
	t.Helper()
	store := NewMemoryUserStore()
	svc := NewUserService(store, NewTokenService("test-secret", time.Hour, 7*24*time.Hour), mailer, nil)
	t.Cleanup(svc.Close)
	return svc, store
}

func TestCreateUserSendsVerification(t *testing.T) {
	mailer := &captureMailer{}
	svc, store := newTestUserService(t, mailer)
	ctx := context.Background()

	user, err := svc.Create(ctx, &authdto.UserCreateInput{
		FirstName: "Lan",
		Email:     "Lan@Example.com",
		Role:      rbac.RoleMerchantAdmin,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "lan@example.com", user.Email)
	assert.Equal(t, models.UserStatusNotVerified, user.Status)
	assert.True(t, user.IsDefaultPassword)
	assert.False(t, user.IsSuperAdmin)
	assert.NotEmpty(t, user.Permissions)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, user.VerificationToken, mailer.sent[0].Token)
	assert.Len(t, mailer.sent[0].DefaultPassword, 12)
	assert.Equal(t, 7, mailer.sent[0].ExpiresInDays)

	stored, err := store.FindByEmail(ctx, "lan@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, mailer.sent[0].DefaultPassword, stored.Password)

	_, err = svc.Create(ctx, &authdto.UserCreateInput{FirstName: "Lan", Email: "lan@example.com", Role: rbac.RoleFinance}, nil)
	assert.Equal(t, common.ErrUserExists, err)
}

func TestCreateUserIgnoresMailFailure(t *testing.T) {
	svc, _ := newTestUserService(t, &captureMailer{err: errors.New("smtp down")})

	user, err := svc.Create(context.Background(), &authdto.UserCreateInput{
		FirstName: "Root",
		Email:     "root@example.com",
		Role:      rbac.RoleSuperAdmin,
	}, nil)
	require.NoError(t, err)
	assert.True(t, user.IsSuperAdmin)
}

func TestVerifyThenLogin(t *testing.T) {
	mailer := &captureMailer{}
	svc, _ := newTestUserService(t, mailer)
	ctx := context.Background()

	_, err := svc.Create(ctx, &authdto.UserCreateInput{FirstName: "Minh", Email: "minh@example.com", Role: rbac.RoleFinance}, nil)
	require.NoError(t, err)
	sent := mailer.sent[0]

	_, err = svc.Login(ctx, &authdto.LoginInput{Email: "minh@example.com", Password: sent.DefaultPassword})
	var appErr *common.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.StatusForbidden, appErr.StatusCode)
	assert.Equal(t, "Account is not_verified", appErr.Message)

	_, err = svc.Verify(ctx, &authdto.VerifyInput{Token: "garbage", Password: "Secret@123"})
	assert.Equal(t, common.ErrVerifyTokenInvalid, err)

	result, err := svc.Verify(ctx, &authdto.VerifyInput{Token: sent.Token, Password: "Secret@123"})
	require.NoError(t, err)
	assert.Equal(t, "minh@example.com", result.Email)

	_, err = svc.Verify(ctx, &authdto.VerifyInput{Token: sent.Token, Password: "Secret@123"})
	assert.Equal(t, common.ErrVerifyTokenUsed, err)

	login, err := svc.Login(ctx, &authdto.LoginInput{Email: "minh@example.com", Password: "Secret@123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.NotNil(t, login.User.LastLogin)

	actor, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "minh@example.com", actor.Email)
	assert.Equal(t, rbac.RoleFinance, actor.Role)
	assert.Equal(t, "Minh", actor.Name)
}

func TestLoginFailures(t *testing.T) {
	svc, store := newTestUserService(t, nil)
	ctx := context.Background()

	_, created, err := svc.EnsureUser(ctx, "Admin", "admin@example.com", "Admin@123", rbac.RoleSuperAdmin)
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = svc.EnsureUser(ctx, "Admin", "ADMIN@example.com", "Other@123", rbac.RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(ctx, &authdto.LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, common.ErrInvalidCredentials, err)

	_, err = svc.Login(ctx, &authdto.LoginInput{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, common.ErrInvalidCredentials, err)

	user, err := store.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, user.FailedAttempts)
	assert.NotNil(t, user.LastFailedLogin)

	_, err = svc.Login(ctx, &authdto.LoginInput{Email: "admin@example.com", Password: "Admin@123"})
	require.NoError(t, err)
	user, err = store.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedAttempts)
}

func TestAuthenticate(t *testing.T) {
	svc, store := newTestUserService(t, nil)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-jwt")
	assert.Equal(t, common.ErrTokenInvalid, err)

	user, _, err := svc.EnsureUser(ctx, "Ops", "ops@example.com", "Ops@12345", rbac.RoleMerchantAdmin)
	require.NoError(t, err)

	// Token xác minh không dùng được để đăng nhập
	verifyToken, _, err := svc.tokens.IssueVerify(user.Email)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, verifyToken)
	assert.Equal(t, common.ErrTokenInvalid, err)

	user.Status = models.UserStatusSuspended
	require.NoError(t, store.Save(ctx, user))
	token, _, err := svc.tokens.IssueLogin(user)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, common.ErrAccountInactive, err)
}
