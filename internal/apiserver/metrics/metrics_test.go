package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/products", "/api/products"},
		{"/api/products/12", "/api/products/{id}"},
		{"/api/admin/products/3/media/44", "/api/admin/products/{id}/media/{id}"},
		{"/media/1700000000000-cat.png", "/media/{key}"},
		{"/assets/app.js", "/static"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.path), tt.path)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New("test")
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/products/9", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/products/10", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products/{id}", "404")))
}

func TestRecordersAndExport(t *testing.T) {
	m := New("shop")
	m.RecordAuditFailure()
	m.RecordAuditSweep(5, time.Millisecond)
	m.RecordMediaIngest(true)
	m.RecordMediaIngest(false)
	m.RecordBlobDelete()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditWriteFailures))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.AuditRowsSwept))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaIngestsTotal.WithLabelValues("deduplicated")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "shop_audit_write_failures_total 1"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordAuditFailure()
	m.RecordAuditSweep(1, time.Second)
	m.RecordMediaIngest(false)
	m.RecordBlobDelete()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}
