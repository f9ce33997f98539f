package botconfigsvc

import (
	"context"
	"errors"
	"strings"

	basemodels "bot_admin/internal/api/base/models"
	botconfigdto "bot_admin/internal/api/botconfig/dto"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/cache"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"
	"bot_admin/internal/metrics"
)

// maxSaveAttempts là số lần tối đa load → áp dụng → lưu khi gặp xung đột revision
const maxSaveAttempts = 3

// Tên operation dùng cho metrics và log
const (
	OpCreate        = "create"
	OpUpdateMinimal = "update_minimal"
	OpResetSelected = "reset_selected"
	OpResetAll      = "reset_all"
	OpDelete        = "delete"
)

// BotConfigService điều phối repository, engine cấu hình, cache minimal config và metrics
type BotConfigService struct {
	repo     Repository
	minimal  cache.MinimalCache
	metrics  *metrics.Metrics
	template *botconfig.Document
}

// NewBotConfigService tạo service. minimal, m và tmpl có thể nil.
func NewBotConfigService(repo Repository, minimal cache.MinimalCache, m *metrics.Metrics, tmpl *botconfig.Document) *BotConfigService {
	return &BotConfigService{repo: repo, minimal: minimal, metrics: m, template: tmpl}
}

// GetFull trả về document đầy đủ của merchant
func (s *BotConfigService) GetFull(ctx context.Context, merchantID string) (*botconfig.Document, error) {
	return s.repo.FindByID(ctx, merchantID)
}

// GetMinimal trả về bản flatten key → current_value, đọc qua cache.
// Cache chỉ được ghi khi generation của merchant không đổi trong lúc load document.
func (s *BotConfigService) GetMinimal(ctx context.Context, merchantID string) (map[string]any, error) {
	var gen int64
	if s.minimal != nil {
		if flat, ok := s.minimal.Get(ctx, merchantID); ok {
			s.metrics.CacheLookup(true)
			return flat, nil
		}
		s.metrics.CacheLookup(false)
		gen = s.minimal.Generation(ctx, merchantID)
	}

	doc, err := s.repo.FindByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	flat := botconfig.Flatten(doc)
	// Có ghi đồng thời sau khi đọc generation thì không cache bản vừa load
	if s.minimal != nil {
		s.minimal.SetIfGeneration(ctx, merchantID, gen, flat)
	}
	return flat, nil
}

// UpdateMinimal kiểm tra toàn bộ updates rồi mới ghi. Chỉ cần một giá trị sai là cả lô bị từ chối.
func (s *BotConfigService) UpdateMinimal(ctx context.Context, merchantID string, updates map[string]any, actor *botconfig.Actor) (*botconfigdto.UpdateResult, error) {
	var err error
	defer func() { s.metrics.ConfigOperation(OpUpdateMinimal, err) }()

	if actor == nil {
		err = common.ErrAuthRequired
		return nil, err
	}
	if len(updates) == 0 {
		err = common.ErrNoFieldsProvided
		return nil, err
	}

	doc, count, err := s.mutate(ctx, OpUpdateMinimal, merchantID, func(doc *botconfig.Document) (int, error) {
		if fieldErrs := botconfig.Validate(doc, updates); len(fieldErrs) > 0 {
			return 0, common.ErrFieldValidation.WithDetails(fieldErrs)
		}
		return botconfig.ApplyUpdates(doc, updates, actor)
	})
	if err != nil {
		return nil, err
	}
	return &botconfigdto.UpdateResult{
		UpdatesApplied: count,
		MerchantID:     merchantID,
		Config:         botconfig.Flatten(doc),
	}, nil
}

// ResetSelected đưa các field được chọn về giá trị gốc
func (s *BotConfigService) ResetSelected(ctx context.Context, merchantID string, keys []string, actor *botconfig.Actor) (*botconfigdto.ResetResult, error) {
	var err error
	defer func() { s.metrics.ConfigOperation(OpResetSelected, err) }()

	if len(keys) == 0 {
		err = common.ErrEmptyFieldList
		return nil, err
	}

	doc, count, err := s.mutate(ctx, OpResetSelected, merchantID, func(doc *botconfig.Document) (int, error) {
		return botconfig.ResetSelected(doc, keys, actor)
	})
	if err != nil {
		return nil, err
	}
	return &botconfigdto.ResetResult{FieldsReset: count, MerchantID: merchantID, Config: botconfig.Flatten(doc)}, nil
}

// ResetAll đưa mọi field về giá trị gốc, chỉ đếm field thực sự thay đổi
func (s *BotConfigService) ResetAll(ctx context.Context, merchantID string, actor *botconfig.Actor) (*botconfigdto.ResetResult, error) {
	var err error
	defer func() { s.metrics.ConfigOperation(OpResetAll, err) }()

	if actor == nil {
		err = common.ErrAuthRequired
		return nil, err
	}

	doc, count, err := s.mutate(ctx, OpResetAll, merchantID, func(doc *botconfig.Document) (int, error) {
		return botconfig.ResetAll(doc, actor)
	})
	if err != nil {
		return nil, err
	}
	return &botconfigdto.ResetResult{FieldsReset: count, MerchantID: merchantID, Config: botconfig.Flatten(doc)}, nil
}

// Delete xóa cấu hình của merchant
func (s *BotConfigService) Delete(ctx context.Context, merchantID string, actor *botconfig.Actor) error {
	var err error
	defer func() { s.metrics.ConfigOperation(OpDelete, err) }()

	if actor == nil {
		err = common.ErrAuthRequired
		return err
	}
	if err = s.repo.Delete(ctx, merchantID); err != nil {
		return err
	}
	s.invalidate(ctx, merchantID)
	return nil
}

// List phân trang danh sách cấu hình
func (s *BotConfigService) List(ctx context.Context, query botconfigdto.ListConfigQuery) (*basemodels.PaginateResult[botconfig.Document], error) {
	return s.repo.List(ctx, query.Page, query.Limit, query.Search)
}

// Create tạo cấu hình mới cho merchant từ template, 409 nếu đã tồn tại
func (s *BotConfigService) Create(ctx context.Context, merchantID string, input botconfigdto.CreateConfigInput, actor *botconfig.Actor) (*botconfig.Document, error) {
	var err error
	defer func() { s.metrics.ConfigOperation(OpCreate, err) }()

	if actor == nil {
		err = common.ErrAuthRequired
		return nil, err
	}
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" {
		err = common.ErrRequiredField.WithDetails("merchant_id")
		return nil, err
	}
	if s.template == nil {
		err = common.NewError(common.ErrCodeBusinessState, "Bot config template is not loaded", common.StatusServiceUnavailable, nil)
		return nil, err
	}

	doc := botconfig.NewFromTemplate(s.template, merchantID, actor)
	if input.Description != "" {
		doc.Meta.Description = input.Description
	}
	if err = s.repo.Insert(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, merchantID)
	return doc, nil
}

// mutate load document, chạy fn rồi lưu với kiểm tra revision.
// Khi xung đột thì load lại và chạy lại fn, tối đa maxSaveAttempts lần.
func (s *BotConfigService) mutate(ctx context.Context, op, merchantID string, fn func(doc *botconfig.Document) (int, error)) (*botconfig.Document, int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		doc, err := s.repo.FindByID(ctx, merchantID)
		if err != nil {
			return nil, 0, err
		}
		count, err := fn(doc)
		if err != nil {
			return nil, 0, err
		}

		err = s.repo.Save(ctx, doc)
		if err == nil {
			s.invalidate(ctx, merchantID)
			s.metrics.FieldsChanged(op, count)
			return doc, count, nil
		}
		if !errors.Is(err, common.ErrVersionConflict) {
			return nil, 0, err
		}

		lastErr = err
		s.metrics.VersionConflict()
		logger.WithModule("botconfig").WithFields(map[string]interface{}{
			"merchant_id": merchantID,
			"operation":   op,
			"attempt":     attempt,
		}).Warn("Revision conflict, reloading config")
	}
	return nil, 0, lastErr
}

func (s *BotConfigService) invalidate(ctx context.Context, merchantID string) {
	if s.minimal != nil {
		s.minimal.Invalidate(ctx, merchantID)
	}
}
