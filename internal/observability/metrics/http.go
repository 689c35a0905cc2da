package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisRequestsTotal  *prometheus.CounterVec
	analysisCacheHitsTotal *prometheus.CounterVec
	analysisDuration       *prometheus.HistogramVec
	analysisSnapshots      *prometheus.HistogramVec
	uploadsTotal           *prometheus.CounterVec
	uploadBytes            *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsi",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dsi",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsi",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total analysis requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	analysisCacheHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsi",
			Subsystem: "analysis",
			Name:      "cache_hits_total",
			Help:      "Total analysis requests served from the cache.",
		},
		[]string{"service"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsi",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end analysis duration in seconds, stream included.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)
	analysisSnapshots := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsi",
			Subsystem: "analysis",
			Name:      "snapshots_per_request",
			Help:      "Distribution of partial snapshots emitted per analysis request.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dsi",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total accepted document uploads.",
		},
		[]string{"service"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dsi",
			Subsystem: "ingest",
			Name:      "upload_bytes",
			Help:      "Distribution of uploaded document sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisRequestsTotal,
		analysisCacheHitsTotal,
		analysisDuration,
		analysisSnapshots,
		uploadsTotal,
		uploadBytes,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		analysisRequestsTotal:  analysisRequestsTotal,
		analysisCacheHitsTotal: analysisCacheHitsTotal,
		analysisDuration:       analysisDuration,
		analysisSnapshots:      analysisSnapshots,
		uploadsTotal:           uploadsTotal,
		uploadBytes:            uploadBytes,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAnalysis(service, outcome string, snapshots int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysisRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.analysisSnapshots.WithLabelValues(service).Observe(float64(snapshots))
	m.analysisDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordAnalysisCacheHit(service string) {
	m.analysisCacheHitsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordUpload(service string, sizeBytes int64) {
	m.uploadsTotal.WithLabelValues(service).Inc()
	if sizeBytes > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
