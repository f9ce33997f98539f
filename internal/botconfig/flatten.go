package botconfig

// Flatten chiếu document thành map key → current_value.
// Field chưa có giá trị bị bỏ qua. Nếu hai section có field trùng key thì
// section đứng sau thắng.
func Flatten(doc *Document) map[string]any {
	out := map[string]any{}
	if doc == nil {
		return out
	}
	doc.EachField(func(_ string, f *Field) {
		if f.CurrentValue != nil {
			out[f.Key] = f.CurrentValue.Interface()
		}
	})
	return out
}

// DuplicateKeys trả về các key xuất hiện ở nhiều hơn một field, theo thứ tự gặp lần đầu
func DuplicateKeys(doc *Document) []string {
	seen := map[string]int{}
	var dups []string
	doc.EachField(func(_ string, f *Field) {
		seen[f.Key]++
		if seen[f.Key] == 2 {
			dups = append(dups, f.Key)
		}
	})
	return dups
}
