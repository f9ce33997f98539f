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

	botconfigdto "bot_admin/internal/api/botconfig/dto"
	botconfighdl "bot_admin/internal/api/botconfig/handler"
	botconfigsvc "bot_admin/internal/api/botconfig/service"
	apirouter "bot_admin/internal/api/router"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/cache"
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
	"admin":   {ID: "1", Name: "Admin", Email: "admin@example.com", Role: rbac.RoleSuperAdmin},
	"finance": {ID: "2", Name: "Fin", Email: "fin@example.com", Role: rbac.RoleFinance},
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	tmpl, err := botconfig.LoadTemplate("../../../../config/seed/bot_config.yaml")
	require.NoError(t, err)

	minimal := cache.NewMemoryMinimalCache(time.Minute)
	t.Cleanup(minimal.Close)

	svc := botconfigsvc.NewBotConfigService(botconfigsvc.NewMemoryRepository(), minimal, nil, tmpl)
	_, err = svc.Create(context.Background(), "m1", botconfigdto.CreateConfigInput{}, testAuth["admin"])
	require.NoError(t, err)

	app := fiber.New()
	r := apirouter.NewRouter(app, testAuth, nil, nil)
	require.NoError(t, apirouter.SetupRoutes(app, r, func(v1 fiber.Router, r *apirouter.Router) error {
		RegisterHandler(v1, r, botconfighdl.NewBotConfigHandler(svc))
		return nil
	}))
	return app
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

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func TestReadRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodGet, "/api/v1/bot-config/minimal/m1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "light", data(t, body)["theme"])

	status, body = call(t, app, http.MethodGet, "/api/v1/bot-config/m1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "m1", data(t, body)["_id"])

	status, body = call(t, app, http.MethodGet, "/api/v1/bot-config/minimal/none", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Configuration not found for this merchant", body["message"])
}

func TestUpdateMinimalRoute(t *testing.T) {
	app := newTestApp(t)
	path := "/api/v1/bot-config/minimal/m1"

	tests := []struct {
		name       string
		token      string
		path       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"không có token", "", path, map[string]any{"theme": "dark"}, http.StatusUnauthorized, ""},
		{"body rỗng", "admin", path, map[string]any{}, http.StatusBadRequest, "No fields provided for update"},
		{"giá trị sai", "admin", path, map[string]any{"theme": "neon"}, http.StatusBadRequest, "Validation failed"},
		{"merchant không tồn tại", "admin", "/api/v1/bot-config/minimal/none", map[string]any{"theme": "dark"}, http.StatusNotFound, ""},
		{"thành công", "admin", path, map[string]any{"theme": "dark", "use_emojis": true}, http.StatusOK, "Updated 2 field(s) successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, http.MethodPatch, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}

	t.Run("lỗi validate trả danh sách errors", func(t *testing.T) {
		_, body := call(t, app, http.MethodPatch, path, "admin", map[string]any{"primary_color": "blue", "ghost": 1})
		errs, ok := body["errors"].([]any)
		require.True(t, ok)
		assert.Len(t, errs, 2)
	})

	t.Run("minimal config phản ánh cập nhật", func(t *testing.T) {
		_, body := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, "dark", data(t, body)["theme"])
		assert.Equal(t, true, data(t, body)["use_emojis"])
	})
}

func TestResetRoutes(t *testing.T) {
	app := newTestApp(t)
	base := "/api/v1/bot-config/minimal/m1"

	_, _ = call(t, app, http.MethodPatch, base, "admin", map[string]any{"theme": "dark", "tone": "playful"})

	status, body := call(t, app, http.MethodPost, base+"/reset", "admin", map[string]any{"fields": []string{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide at least one field to reset", body["message"])

	status, body = call(t, app, http.MethodPost, base+"/reset", "admin", map[string]any{"fields": []string{"theme"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Reset 1 field(s) to factory values", body["message"])
	assert.Equal(t, float64(1), data(t, body)["fields_reset"])

	status, body = call(t, app, http.MethodPost, base+"/reset-all", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(t, body)["fields_reset"])

	status, _ = call(t, app, http.MethodPost, base+"/reset-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/v1/bot-config/m2", "finance", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/v1/bot-config/m2", "admin", map[string]any{"description": "Shop 2"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "m2", data(t, body)["_id"])

	status, _ = call(t, app, http.MethodPost, "/api/v1/bot-config/m2", "admin", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = call(t, app, http.MethodGet, "/api/v1/bot-config/?page=1&limit=10", "finance", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), data(t, body)["total"])

	status, _ = call(t, app, http.MethodDelete, "/api/v1/bot-config/m2", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, http.MethodDelete, "/api/v1/bot-config/m2", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "m2", data(t, body)["merchant_id"])

	status, _ = call(t, app, http.MethodGet, "/api/v1/bot-config/m2", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
