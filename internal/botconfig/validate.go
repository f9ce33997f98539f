package botconfig

import (
	"fmt"
	"sort"

	"bot_admin/internal/registry"
)

// FieldError là lỗi validate của một field trong batch cập nhật
type FieldError struct {
	Field   string   `json:"field"`
	Label   string   `json:"label,omitempty"`
	Section string   `json:"section,omitempty"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// Rule kiểm tra một giá trị, trả về danh sách thông báo lỗi (rỗng = hợp lệ)
type Rule interface {
	Check(value any) []string
}

// RuleFunc cho phép dùng hàm làm Rule
type RuleFunc func(value any) []string

func (fn RuleFunc) Check(value any) []string { return fn(value) }

// RuleFactory tạo Rule cho một field. mandatory cho biết rule có được nhận nil hay không.
type RuleFactory func(f *Field, mandatory bool) Rule

// fallbackRule là tên trong registry của rule cho loại field không đăng ký
const fallbackRule = "*"

var rules = registry.NewRegistry[RuleFactory]()

// RegisterRule đăng ký (hoặc thay) rule cho một loại field
func RegisterRule(fieldType FieldType, factory RuleFactory) {
	_, _ = rules.Register(string(fieldType), factory)
}

// RuleFor trả về rule áp dụng cho field. Field không bắt buộc luôn chấp nhận nil.
func RuleFor(f *Field) Rule {
	factory, ok := rules.Get(string(f.Type))
	if !ok {
		factory, _ = rules.Get(fallbackRule)
	}
	rule := factory(f, f.Mandatory)
	if f.Mandatory {
		return rule
	}
	return RuleFunc(func(value any) []string {
		if value == nil {
			return nil
		}
		return rule.Check(value)
	})
}

type fieldRef struct {
	field   *Field
	section string
}

// Validate kiểm tra một batch cập nhật với metadata của document.
// Trả về toàn bộ lỗi, rỗng nếu batch hợp lệ. Key không tồn tại cũng là lỗi.
func Validate(doc *Document, updates map[string]any) []FieldError {
	index := map[string]fieldRef{}
	doc.EachField(func(sectionKey string, f *Field) {
		if _, exists := index[f.Key]; !exists {
			index[f.Key] = fieldRef{field: f, section: sectionKey}
		}
	})

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []FieldError
	for _, key := range keys {
		ref, ok := index[key]
		if !ok {
			errs = append(errs, FieldError{
				Field:   key,
				Message: fmt.Sprintf("Field '%s' is not defined in the configuration schema", key),
			})
			continue
		}

		value := normalize(updates[key])
		problems := RuleFor(ref.field).Check(value)
		if len(problems) == 0 {
			continue
		}

		message := fmt.Sprintf("Invalid value for '%s'", ref.field.Label)
		if ref.field.Mandatory {
			message = fmt.Sprintf("'%s' is mandatory and must be provided", ref.field.Label)
		}
		errs = append(errs, FieldError{
			Field:   key,
			Label:   ref.field.Label,
			Section: ref.section,
			Message: message,
			Errors:  problems,
		})
	}
	return errs
}
