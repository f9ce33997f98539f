package botconfig

import "reflect"

// Differs so sánh sâu hai giá trị thô, trả về true nếu chúng khác nhau.
//
// Số được so sánh theo giá trị (int và float64 bằng nhau là bằng nhau).
// Object chỉ bằng nhau khi có cùng tập key và giá trị từng key bằng nhau.
func Differs(current, factory any) bool {
	current, factory = normalize(current), normalize(factory)

	if current == nil && factory == nil {
		return false
	}
	if current == nil || factory == nil {
		return true
	}

	switch c := current.(type) {
	case []any:
		f, ok := factory.([]any)
		if !ok || len(c) != len(f) {
			return true
		}
		for i := range c {
			if Differs(c[i], f[i]) {
				return true
			}
		}
		return false

	case map[string]any:
		f, ok := factory.(map[string]any)
		if !ok || len(c) != len(f) {
			return true
		}
		for k, cv := range c {
			fv, exists := f[k]
			if !exists || Differs(cv, fv) {
				return true
			}
		}
		return false

	case string, float64, bool:
		return current != factory
	}
	return !reflect.DeepEqual(current, factory)
}

// ValuesDiffer là Differs cho hai Value
func ValuesDiffer(current, factory Value) bool {
	return Differs(interfaceOf(current), interfaceOf(factory))
}
