package botconfigsvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	botconfigdto "bot_admin/internal/api/botconfig/dto"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/cache"
	"bot_admin/internal/common"
	"bot_admin/internal/metrics"
)

var admin = &botconfig.Actor{ID: "u1", Name: "Admin User", Email: "admin@example.com", Role: "super_admin"}

func loadTemplate(t *testing.T) *botconfig.Document {
	t.Helper()
	tmpl, err := botconfig.LoadTemplate("../../../../config/seed/bot_config.yaml")
	require.NoError(t, err)
	return tmpl
}

func newTestService(t *testing.T, repo Repository) (*BotConfigService, *cache.MemoryMinimalCache, *metrics.Metrics) {
	t.Helper()
	minimal := cache.NewMemoryMinimalCache(time.Minute)
	t.Cleanup(minimal.Close)
	m := metrics.New()
	svc := NewBotConfigService(repo, minimal, m, loadTemplate(t))
	_, err := svc.Create(context.Background(), "m1", botconfigdto.CreateConfigInput{}, admin)
	require.NoError(t, err)
	return svc, minimal, m
}

// counterValue đọc giá trị counter từ registry, label rỗng nghĩa là counter không có label
func counterValue(t *testing.T, m *metrics.Metrics, name, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" {
				return metric.GetCounter().GetValue()
			}
			for _, lp := range metric.GetLabel() {
				if lp.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// conflictRepo trả ErrVersionConflict cho n lần Save đầu tiên
type conflictRepo struct {
	*MemoryRepository
	conflicts int
	saves     int
}

func (r *conflictRepo) Save(ctx context.Context, doc *botconfig.Document) error {
	r.saves++
	if r.conflicts > 0 {
		r.conflicts--
		return common.ErrVersionConflict
	}
	return r.MemoryRepository.Save(ctx, doc)
}

// pausingRepo dừng lần FindByID kế tiếp sau khi đã load document, tới khi release đóng
type pausingRepo struct {
	*MemoryRepository
	mu      sync.Mutex
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausingRepo) pauseNextFind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = make(chan struct{})
	r.release = make(chan struct{})
}

func (r *pausingRepo) FindByID(ctx context.Context, merchantID string) (*botconfig.Document, error) {
	doc, err := r.MemoryRepository.FindByID(ctx, merchantID)
	r.mu.Lock()
	loaded, release := r.loaded, r.release
	r.loaded, r.release = nil, nil
	r.mu.Unlock()
	if loaded != nil {
		close(loaded)
		<-release
	}
	return doc, err
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, NewMemoryRepository())

	t.Run("merchant đã có cấu hình", func(t *testing.T) {
		_, err := svc.Create(ctx, "m1", botconfigdto.CreateConfigInput{}, admin)
		assert.ErrorIs(t, err, common.ErrConfigExists)
	})

	t.Run("tạo từ template", func(t *testing.T) {
		doc, err := svc.Create(ctx, "m2", botconfigdto.CreateConfigInput{Description: "Shop 2"}, admin)
		require.NoError(t, err)
		assert.Equal(t, "m2", doc.ID)
		assert.Equal(t, "Shop 2", doc.Meta.Description)
		assert.Equal(t, int64(0), doc.Meta.Audit.ChangeCount)
		require.NotNil(t, doc.Meta.Audit.CreatedBy)
		assert.Equal(t, "u1", doc.Meta.Audit.CreatedBy.UserID)
	})

	t.Run("thiếu actor", func(t *testing.T) {
		_, err := svc.Create(ctx, "m3", botconfigdto.CreateConfigInput{}, nil)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
	})
}

func TestGetMinimalUsesCache(t *testing.T) {
	ctx := context.Background()
	svc, minimal, m := newTestService(t, NewMemoryRepository())

	flat, err := svc.GetMinimal(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "light", flat["theme"])

	_, ok := minimal.Get(ctx, "m1")
	assert.True(t, ok)

	_, err = svc.GetMinimal(ctx, "m1")
	require.NoError(t, err)
	assert.InDelta(t, 1, counterValue(t, m, "bot_admin_cache_lookups_total", "hit"), 0)
	assert.InDelta(t, 1, counterValue(t, m, "bot_admin_cache_lookups_total", "miss"), 0)

	_, err = svc.GetMinimal(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}

func TestGetMinimalDoesNotCacheStaleRead(t *testing.T) {
	ctx := context.Background()
	repo := &pausingRepo{MemoryRepository: NewMemoryRepository()}
	svc, minimal, _ := newTestService(t, repo)
	repo.pauseNextFind()
	loaded, release := repo.loaded, repo.release

	type result struct {
		flat map[string]any
		err  error
	}
	done := make(chan result, 1)
	go func() {
		flat, err := svc.GetMinimal(ctx, "m1")
		done <- result{flat, err}
	}()

	<-loaded
	_, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark"}, admin)
	require.NoError(t, err)
	close(release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Equal(t, "light", stale.flat["theme"])

	_, ok := minimal.Get(ctx, "m1")
	assert.False(t, ok)

	flat, err := svc.GetMinimal(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "dark", flat["theme"])
	cached, ok := minimal.Get(ctx, "m1")
	require.True(t, ok)
	assert.Equal(t, "dark", cached["theme"])
}

func TestUpdateMinimal(t *testing.T) {
	ctx := context.Background()

	t.Run("cập nhật và làm mới cache", func(t *testing.T) {
		svc, minimal, _ := newTestService(t, NewMemoryRepository())
		_, err := svc.GetMinimal(ctx, "m1")
		require.NoError(t, err)

		res, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark", "use_emojis": true}, admin)
		require.NoError(t, err)
		assert.Equal(t, 2, res.UpdatesApplied)
		assert.Equal(t, "dark", res.Config["theme"])

		_, ok := minimal.Get(ctx, "m1")
		assert.False(t, ok)

		doc, err := svc.GetFull(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), doc.Meta.Audit.ChangeCount)
		assert.Equal(t, int64(1), doc.Revision)
		assert.Equal(t, "Updated 2 field(s)", doc.Meta.Audit.LastChangeSummary)
	})

	t.Run("một giá trị sai thì cả lô bị từ chối", func(t *testing.T) {
		svc, _, _ := newTestService(t, NewMemoryRepository())
		_, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark", "primary_color": "blue"}, admin)
		require.ErrorIs(t, err, common.ErrFieldValidation)

		var custom *common.Error
		require.True(t, errors.As(err, &custom))
		fieldErrs, ok := custom.Details.([]botconfig.FieldError)
		require.True(t, ok)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "primary_color", fieldErrs[0].Field)

		doc, err := svc.GetFull(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), doc.Meta.Audit.ChangeCount)
	})

	tests := []struct {
		name    string
		updates map[string]any
		actor   *botconfig.Actor
		merch   string
		wantErr error
	}{
		{"không có actor", map[string]any{"theme": "dark"}, nil, "m1", common.ErrAuthRequired},
		{"body rỗng", map[string]any{}, admin, "m1", common.ErrNoFieldsProvided},
		{"merchant không tồn tại", map[string]any{"theme": "dark"}, admin, "nope", common.ErrConfigNotFound},
		{"key lạ", map[string]any{"unknown": 1}, admin, "m1", common.ErrFieldValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, NewMemoryRepository())
			_, err := svc.UpdateMinimal(ctx, tt.merch, tt.updates, tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResetOperations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, NewMemoryRepository())

	_, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark", "tone": "playful"}, admin)
	require.NoError(t, err)

	res, err := svc.ResetSelected(ctx, "m1", []string{"theme", "chatbot_name"}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FieldsReset)
	assert.Equal(t, "light", res.Config["theme"])
	assert.Equal(t, "playful", res.Config["tone"])

	_, err = svc.ResetSelected(ctx, "m1", nil, admin)
	assert.ErrorIs(t, err, common.ErrEmptyFieldList)
	_, err = svc.ResetSelected(ctx, "m1", []string{"nothing"}, admin)
	assert.ErrorIs(t, err, common.ErrNoValidFields)

	all, err := svc.ResetAll(ctx, "m1", admin)
	require.NoError(t, err)
	assert.Equal(t, 1, all.FieldsReset)

	again, err := svc.ResetAll(ctx, "m1", admin)
	require.NoError(t, err)
	assert.Equal(t, 0, again.FieldsReset)

	doc, err := svc.GetFull(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.Meta.Audit.ChangeCount)

	_, err = svc.ResetAll(ctx, "m1", nil)
	assert.ErrorIs(t, err, common.ErrAuthRequired)
}

func TestMutateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("thành công sau khi xung đột", func(t *testing.T) {
		repo := &conflictRepo{MemoryRepository: NewMemoryRepository()}
		svc, _, m := newTestService(t, repo)
		repo.conflicts = maxSaveAttempts - 1

		res, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark"}, admin)
		require.NoError(t, err)
		assert.Equal(t, 1, res.UpdatesApplied)
		assert.Equal(t, maxSaveAttempts, repo.saves)
		assert.InDelta(t, maxSaveAttempts-1, counterValue(t, m, "bot_admin_botconfig_version_conflicts_total", ""), 0)
	})

	t.Run("hết lượt thử thì trả xung đột", func(t *testing.T) {
		repo := &conflictRepo{MemoryRepository: NewMemoryRepository()}
		svc, _, _ := newTestService(t, repo)
		repo.conflicts = maxSaveAttempts

		_, err := svc.UpdateMinimal(ctx, "m1", map[string]any{"theme": "dark"}, admin)
		assert.ErrorIs(t, err, common.ErrVersionConflict)
		assert.Equal(t, common.StatusConflict, common.StatusOf(err))
	})
}

func TestMemoryRepositoryRevision(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Insert(ctx, &botconfig.Document{ID: "m1"}))

	a, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	b, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, int64(1), a.Revision)
	assert.ErrorIs(t, repo.Save(ctx, b), common.ErrVersionConflict)
	assert.ErrorIs(t, repo.Save(ctx, &botconfig.Document{ID: "ghost"}), common.ErrConfigNotFound)
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, NewMemoryRepository())
	for _, id := range []string{"shop-a", "shop-b", "other"} {
		_, err := svc.Create(ctx, id, botconfigdto.CreateConfigInput{}, admin)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, botconfigdto.ListConfigQuery{Page: 1, Limit: 2, Search: "SHOP"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.TotalPage)

	page, err = svc.List(ctx, botconfigdto.ListConfigQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Items, 1)

	assert.ErrorIs(t, svc.Delete(ctx, "shop-a", nil), common.ErrAuthRequired)
	require.NoError(t, svc.Delete(ctx, "shop-a", admin))
	assert.ErrorIs(t, svc.Delete(ctx, "shop-a", admin), common.ErrConfigNotFound)
	_, err = svc.GetFull(ctx, "shop-a")
	assert.ErrorIs(t, err, common.ErrConfigNotFound)
}
