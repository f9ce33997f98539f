// Package botconfig chứa mô hình cấu hình bot theo merchant: field có kiểu,
// section, document kèm audit, cùng các thao tác flatten, cập nhật, reset về
// giá trị gốc và validate theo loại field.
//
// Package không phụ thuộc vào tầng lưu trữ hay HTTP; service bên ngoài chịu
// trách nhiệm load/save document và xác thực người gọi.
package botconfig

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value là giá trị của một field. Mỗi loại field có một biến thể riêng;
// nil nghĩa là field chưa có giá trị.
type Value interface {
	// Interface trả về dạng thô (string, float64, bool, []string, map[string]any)
	// dùng cho JSON/BSON và cho bộ so sánh.
	Interface() any
	isValue()
}

// TextValue dùng cho text, textarea, dropdown, color, image
type TextValue string

// NumberValue dùng cho number, slider
type NumberValue float64

// BoolValue dùng cho toggle
type BoolValue bool

// ListValue dùng cho list
type ListValue []string

// VoiceValue dùng cho voice_preview: hoặc một tên preset, hoặc object {voice, model}
type VoiceValue struct {
	Preset   string
	Voice    *string
	Model    *string
	IsObject bool
}

// RawValue giữ nguyên dữ liệu không khớp với kiểu khai báo của field
// (loại field lạ hoặc dữ liệu cũ sai kiểu).
type RawValue struct {
	V any
}

func (v TextValue) Interface() any   { return string(v) }
func (v NumberValue) Interface() any { return float64(v) }
func (v BoolValue) Interface() any   { return bool(v) }
func (v ListValue) Interface() any   { return append([]string{}, v...) }
func (v RawValue) Interface() any    { return v.V }

func (v VoiceValue) Interface() any {
	if !v.IsObject {
		return v.Preset
	}
	out := map[string]any{}
	if v.Voice != nil {
		out["voice"] = *v.Voice
	}
	if v.Model != nil {
		out["model"] = *v.Model
	}
	return out
}

func (TextValue) isValue()   {}
func (NumberValue) isValue() {}
func (BoolValue) isValue()   {}
func (ListValue) isValue()   {}
func (VoiceValue) isValue()  {}
func (RawValue) isValue()    {}

// ValueOf chuyển dữ liệu thô (từ JSON, BSON hoặc YAML) thành Value theo loại field.
// Dữ liệu không khớp kiểu được bọc trong RawValue, nil trả về nil.
func ValueOf(fieldType FieldType, raw any) Value {
	raw = normalize(raw)
	if raw == nil {
		return nil
	}

	switch fieldType {
	case TypeText, TypeTextarea, TypeDropdown, TypeColor, TypeImage:
		if s, ok := raw.(string); ok {
			return TextValue(s)
		}
	case TypeNumber, TypeSlider:
		if n, ok := raw.(float64); ok {
			return NumberValue(n)
		}
	case TypeToggle:
		if b, ok := raw.(bool); ok {
			return BoolValue(b)
		}
	case TypeList:
		if l, ok := stringList(raw); ok {
			return ListValue(l)
		}
	case TypeVoicePreview:
		switch v := raw.(type) {
		case string:
			return VoiceValue{Preset: v}
		case map[string]any:
			if voice, ok := voiceFromMap(v); ok {
				return voice
			}
		}
	}
	return RawValue{V: raw}
}

// interfaceOf trả về dạng thô của v, nil nếu v là nil
func interfaceOf(v Value) any {
	if v == nil {
		return nil
	}
	return v.Interface()
}

func voiceFromMap(m map[string]any) (VoiceValue, bool) {
	out := VoiceValue{IsObject: true}
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			return VoiceValue{}, false
		}
		switch k {
		case "voice":
			out.Voice = &s
		case "model":
			out.Model = &s
		default:
			return VoiceValue{}, false
		}
	}
	return out, true
}

func stringList(raw any) ([]string, bool) {
	switch l := raw.(type) {
	case []string:
		return append([]string{}, l...), true
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// normalize đưa dữ liệu từ các decoder khác nhau về cùng một dạng:
// số về float64, document về map[string]any, mảng về []any.
func normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.M:
		return normalize(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	case primitive.A:
		return normalize([]any(v))
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	}
	return raw
}
