package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const filteredKey = "_filtered"

// FilterHook lọc log entries theo module và log type.
// Entry bị lọc được đánh dấu bằng field "_filtered", AsyncHook sẽ bỏ qua nó.
type FilterHook struct {
	allowedModules  map[string]bool
	allowedLogTypes map[string]bool
}

// NewFilterHook tạo filter hook từ cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	return &FilterHook{
		allowedModules:  parseFilter(cfg.FilterModules),
		allowedLogTypes: parseFilter(cfg.FilterLogTypes),
	}
}

// parseFilter parse "a,b,c" thành map; rỗng hoặc "*" trả về nil (cho phép tất cả)
func parseFilter(filterStr string) map[string]bool {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" || filterStr == "*" {
		return nil
	}
	result := make(map[string]bool)
	for _, v := range strings.Split(filterStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result[strings.ToLower(v)] = true
		}
	}
	return result
}

// Levels trả về các log levels mà hook này xử lý
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry nếu không thỏa filter
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	if h.allowedLogTypes != nil && !h.allowedLogTypes[entry.Level.String()] {
		entry.Data[filteredKey] = true
		return nil
	}
	if h.allowedModules != nil {
		// Entry không có module thì luôn được ghi
		if module, ok := entry.Data["module"].(string); ok && module != "" && !h.allowedModules[strings.ToLower(module)] {
			entry.Data[filteredKey] = true
		}
	}
	return nil
}

func filtered(entry *logrus.Entry) bool {
	v, ok := entry.Data[filteredKey].(bool)
	return ok && v
}
