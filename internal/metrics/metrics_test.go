package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ConfigOperation("update", nil)
	m.ConfigOperation("update", errors.New("boom"))
	m.FieldsChanged("update", 3)
	m.FieldsChanged("update", 0)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.VersionConflict()
	m.ObserveHTTP("GET", "/api/v1/bot-config/minimal/:merchant_id", 200, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.configOps.WithLabelValues("update", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configOps.WithLabelValues("update", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fieldsChanged.WithLabelValues("update")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.versionConflicts))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bot_admin_http_requests_total"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ConfigOperation("reset", nil)
		m.FieldsChanged("reset", 1)
		m.CacheLookup(true)
		m.VersionConflict()
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())
}
