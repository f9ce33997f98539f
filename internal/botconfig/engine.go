package botconfig

import (
	"fmt"

	"bot_admin/internal/common"
)

// ApplyUpdates gán current_value cho mọi field có key nằm trong updates.
//
// Key không khớp field nào bị bỏ qua. Số trả về là số field được gán, kể cả
// khi giá trị mới trùng giá trị cũ. Nếu không field nào khớp thì trả
// ErrNoValidFields và document giữ nguyên. Giá trị đầu vào phải được Validate trước.
func ApplyUpdates(doc *Document, updates map[string]any, actor *Actor) (int, error) {
	if actor == nil {
		return 0, common.ErrAuthRequired
	}

	var matched []*Field
	doc.EachField(func(_ string, f *Field) {
		if _, ok := updates[f.Key]; ok {
			matched = append(matched, f)
		}
	})
	if len(matched) == 0 {
		return 0, common.ErrNoValidFields
	}

	for _, f := range matched {
		f.CurrentValue = ValueOf(f.Type, updates[f.Key])
	}
	doc.stamp(actor, fmt.Sprintf("Updated %d field(s)", len(matched)))
	return len(matched), nil
}

// ResetSelected đưa các field có key nằm trong keys về factory_value.
// Mọi field khớp đều được đếm, kể cả field đang ở giá trị gốc.
// actor có thể nil, khi đó last_updated_by giữ nguyên.
func ResetSelected(doc *Document, keys []string, actor *Actor) (int, error) {
	if len(keys) == 0 {
		return 0, common.ErrEmptyFieldList
	}

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	var matched []*Field
	doc.EachField(func(_ string, f *Field) {
		if _, ok := wanted[f.Key]; ok {
			matched = append(matched, f)
		}
	})
	if len(matched) == 0 {
		return 0, common.ErrNoValidFields
	}

	for _, f := range matched {
		f.CurrentValue = cloneValue(f.FactoryValue)
	}
	doc.stamp(actor, fmt.Sprintf("Reset %d field(s) to factory values", len(matched)))
	return len(matched), nil
}

// ResetAll đưa mọi field về factory_value. Chỉ đếm field thực sự thay đổi,
// nên gọi hai lần liên tiếp thì lần sau trả về 0. change_count vẫn tăng 1.
func ResetAll(doc *Document, actor *Actor) (int, error) {
	if actor == nil {
		return 0, common.ErrAuthRequired
	}

	count := 0
	doc.EachField(func(_ string, f *Field) {
		if ValuesDiffer(f.CurrentValue, f.FactoryValue) {
			f.CurrentValue = cloneValue(f.FactoryValue)
			count++
		}
	})
	doc.stamp(actor, fmt.Sprintf("Reset %d field(s) to factory values (full reset)", count))
	return count, nil
}
