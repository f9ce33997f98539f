package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhdl "bot_admin/internal/api/auth/handler"
	authsvc "bot_admin/internal/api/auth/service"
	apirouter "bot_admin/internal/api/router"
	"bot_admin/internal/notification"
	"bot_admin/internal/rbac"
)

type captureMailer struct {
	sent []notification.VerificationEmail
}

func (m *captureMailer) SendVerification(_ context.Context, msg notification.VerificationEmail) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *captureMailer) {
	t.Helper()
	mailer := &captureMailer{}
	svc := authsvc.NewUserService(authsvc.NewMemoryUserStore(),
		authsvc.NewTokenService("route-secret", time.Hour, 7*24*time.Hour), mailer, nil)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	_, _, err := svc.EnsureUser(ctx, "Admin", "admin@example.com", "Admin@123", rbac.RoleSuperAdmin)
	require.NoError(t, err)
	_, _, err = svc.EnsureUser(ctx, "Fin", "fin@example.com", "Finance@123", rbac.RoleFinance)
	require.NoError(t, err)

	app := fiber.New()
	r := apirouter.NewRouter(app, svc, nil, nil)
	require.NoError(t, apirouter.SetupRoutes(app, r, Routes(authhdl.NewUserHandler(svc))))
	return app, mailer
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, "login failed: %v", body)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLoginRoute(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "admin@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body["message"])

	status, body = call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	token := login(t, app, "admin@example.com", "Admin@123")
	assert.NotEmpty(t, token)
}

func TestUserManagementRoutes(t *testing.T) {
	app, mailer := newTestApp(t)
	admin := login(t, app, "admin@example.com", "Admin@123")
	finance := login(t, app, "fin@example.com", "Finance@123")

	newUser := map[string]any{"firstName": "Hoa", "email": "hoa@example.com", "role": rbac.RoleMerchantAdmin}

	status, _ := call(t, app, http.MethodPost, "/api/v1/users", "", newUser)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/api/v1/users", finance, newUser)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/v1/users", admin, map[string]any{"firstName": "Hoa", "email": "hoa@example.com", "role": "root"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotNil(t, body["errors"])

	status, body = call(t, app, http.MethodPost, "/api/v1/users", admin, newUser)
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "not_verified", data["status"])
	assert.NotContains(t, data, "password")
	require.Len(t, mailer.sent, 1)

	status, _ = call(t, app, http.MethodPost, "/api/v1/users", admin, newUser)
	assert.Equal(t, http.StatusConflict, status)

	status, body = call(t, app, http.MethodGet, "/api/v1/users?status=not_verified", finance, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/auth/verify", "", map[string]any{"token": mailer.sent[0].Token, "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodPost, "/api/v1/auth/verify", "", map[string]any{"token": mailer.sent[0].Token, "password": "Hoa@12345"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hoa@example.com", body["data"].(map[string]any)["email"])

	login(t, app, "hoa@example.com", "Hoa@12345")
}
