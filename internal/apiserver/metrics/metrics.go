// Package metrics Prometheus 指标导出
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 包含所有 API Server 指标
//
// 所有 Record* 方法对 nil 接收者安全，未启用指标时可直接传 nil。
type Metrics struct {
	registry prometheus.Gatherer

	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 媒体指标
	MediaIngestsTotal *prometheus.CounterVec
	MediaBlobDeletes  prometheus.Counter

	// 审计指标
	AuditWriteFailures prometheus.Counter
	AuditRowsSwept     prometheus.Counter
	AuditSweepDuration prometheus.Histogram
}

// New 创建指标实例，注册到独立的 Registry
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		MediaIngestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_ingests_total",
				Help:      "Media uploads by result (created | deduplicated)",
			},
			[]string{"result"},
		),
		MediaBlobDeletes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_blob_deletes_total",
				Help:      "Blobs removed after their last product reference was dropped",
			},
		),
		AuditWriteFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_write_failures_total",
				Help:      "Admin audit rows that failed to persist",
			},
		),
		AuditRowsSwept: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_rows_swept_total",
				Help:      "Admin audit rows deleted by retention sweeps and explicit purges",
			},
		),
		AuditSweepDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "audit_sweep_duration_seconds",
				Help:      "Audit retention sweep duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}
}

// Middleware 创建 HTTP 指标中间件
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := NormalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// NormalizePath 规范化路径，将数字 ID 替换为占位符，避免高基数
// 例如 /api/admin/products/12/media/7 -> /api/admin/products/{id}/media/{id}
// 媒体文件路径统一折叠为 /media/{key}
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/media/") {
		return "/media/{key}"
	}
	if !strings.HasPrefix(path, "/api/") {
		return "/static"
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}

// Handler 返回 Prometheus HTTP Handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMediaIngest 记录媒体上传结果
func (m *Metrics) RecordMediaIngest(deduplicated bool) {
	if m == nil {
		return
	}
	result := "created"
	if deduplicated {
		result = "deduplicated"
	}
	m.MediaIngestsTotal.WithLabelValues(result).Inc()
}

// RecordBlobDelete 记录孤儿 blob 删除
func (m *Metrics) RecordBlobDelete() {
	if m == nil {
		return
	}
	m.MediaBlobDeletes.Inc()
}

// RecordAuditFailure 记录审计写入失败
func (m *Metrics) RecordAuditFailure() {
	if m == nil {
		return
	}
	m.AuditWriteFailures.Inc()
}

// RecordAuditSweep 记录一次保留期清理
func (m *Metrics) RecordAuditSweep(deleted int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.AuditRowsSwept.Add(float64(deleted))
	m.AuditSweepDuration.Observe(duration.Seconds())
}
