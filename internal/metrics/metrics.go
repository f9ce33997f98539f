// Package metrics gom các chỉ số Prometheus của server: HTTP, thao tác cấu hình bot,
// cache và xung đột revision. Mọi method đều an toàn khi receiver là nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bot_admin"

// Metrics chứa registry riêng và các collector
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	configOps        *prometheus.CounterVec
	fieldsChanged    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	versionConflicts prometheus.Counter
}

// New tạo Metrics với registry mới, kèm collector Go runtime và process
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Số request HTTP theo method, route và status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Thời gian xử lý request HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		configOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "botconfig",
			Name:      "operations_total",
			Help:      "Số thao tác trên cấu hình bot theo loại và kết quả",
		}, []string{"operation", "result"}),
		fieldsChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "botconfig",
			Name:      "fields_changed_total",
			Help:      "Số field được cập nhật hoặc reset",
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Số lần tra cache minimal config theo kết quả hit/miss",
		}, []string{"result"}),
		versionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "botconfig",
			Name:      "version_conflicts_total",
			Help:      "Số lần lưu bị từ chối vì revision đã thay đổi",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.configOps,
		m.fieldsChanged,
		m.cacheLookups,
		m.versionConflicts,
	)
	return m
}

// Registry trả về registry để test hoặc gắn thêm collector
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler trả về http.Handler phục vụ /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP ghi nhận một request đã xử lý xong
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ConfigOperation ghi nhận một thao tác cấu hình. err nil = success.
func (m *Metrics) ConfigOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.configOps.WithLabelValues(operation, result).Inc()
}

// FieldsChanged cộng số field bị thay đổi bởi operation
func (m *Metrics) FieldsChanged(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fieldsChanged.WithLabelValues(operation).Add(float64(n))
}

// CacheLookup ghi nhận hit/miss của cache
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// VersionConflict ghi nhận một lần xung đột revision
func (m *Metrics) VersionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}
