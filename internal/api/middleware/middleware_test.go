package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
	"bot_admin/internal/rbac"
)

type fakeAuth map[string]*botconfig.Actor

func (f fakeAuth) Authenticate(_ context.Context, token string) (*botconfig.Actor, error) {
	if actor, ok := f[token]; ok {
		return actor, nil
	}
	return nil, common.ErrTokenInvalid
}

var testAuth = fakeAuth{
	"admin":   {ID: "1", Name: "Admin", Email: "a@x.com", Role: rbac.RoleSuperAdmin},
	"finance": {ID: "2", Name: "Fin", Email: "f@x.com", Role: rbac.RoleFinance},
	"ghost":   {ID: "3", Name: "Ghost", Email: "g@x.com", Role: "ghost"},
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func whoAmI(c fiber.Ctx) error {
	actor := ActorFrom(c)
	if actor == nil {
		return c.JSON(fiber.Map{"actor": nil})
	}
	return c.JSON(fiber.Map{"actor": actor.ID})
}

func TestAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/required", AuthMiddleware(testAuth), whoAmI)
	app.Get("/optional", OptionalAuthMiddleware(testAuth), whoAmI)

	status, body := doRequest(t, app, http.MethodGet, "/required", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, common.ErrCodeAuthToken.Code, body["code"])

	status, _ = doRequest(t, app, http.MethodGet, "/required", "bad")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doRequest(t, app, http.MethodGet, "/required", "admin")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", body["actor"])

	status, body = doRequest(t, app, http.MethodGet, "/optional", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["actor"])

	status, body = doRequest(t, app, http.MethodGet, "/optional", "bad")
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["actor"])

	status, body = doRequest(t, app, http.MethodGet, "/optional", "admin")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", body["actor"])
}

func TestRequirePermission(t *testing.T) {
	table := rbac.DefaultTable()
	app := fiber.New()
	app.Get("/anon", RequirePermission(table, rbac.ModuleAdminPanel, rbac.Read), whoAmI)
	app.Patch("/config", AuthMiddleware(testAuth), RequirePermission(table, rbac.ModuleAdminPanel, rbac.Write), whoAmI)

	status, _ := doRequest(t, app, http.MethodGet, "/anon", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doRequest(t, app, http.MethodPatch, "/config", "admin")
	assert.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, app, http.MethodPatch, "/config", "finance")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied: WRITE on adminPanel", body["message"])

	status, body = doRequest(t, app, http.MethodPatch, "/config", "ghost")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unknown role", body["message"])
}

func TestErrorBody(t *testing.T) {
	t.Run("lỗi validate có danh sách errors", func(t *testing.T) {
		status, body := ErrorBody(common.ErrFieldValidation.WithDetails([]botconfig.FieldError{{Field: "x", Message: "m"}}))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["message"])
		assert.NotNil(t, body["errors"])
		assert.Nil(t, body["details"])
	})

	t.Run("nguyên nhân nội bộ bị ẩn", func(t *testing.T) {
		status, body := ErrorBody(common.ConvertMongoError(errors.New("socket closed")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.NotContains(t, body, "details")
	})

	t.Run("lỗi lạ thành lỗi hệ thống chung", func(t *testing.T) {
		status, body := ErrorBody(errors.New("secret stack"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", body["message"])
	})

	t.Run("fiber error giữ status", func(t *testing.T) {
		status, body := ErrorBody(fiber.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, common.ErrCodeDatabaseQuery.Code, body["code"])
	})
}
