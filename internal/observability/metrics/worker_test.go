package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrapeWorker(t *testing.T, m *WorkerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestWorkerMetricsRecordExtractionLifecycle(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.StartDocument()
	m.FinishDocument("worker", 2*time.Second, nil)
	m.StartDocument()
	m.FinishDocument("worker", time.Second, errors.New("corrupt file"))
	m.AddRecognizedPages("worker", 7)
	m.ObserveQueueLag("worker", 500*time.Millisecond)

	scraped := scrapeWorker(t, m)
	for _, series := range []string{
		`dsi_worker_document_extract_total{service="worker",status="success"} 1`,
		`dsi_worker_document_extract_total{service="worker",status="error"} 1`,
		`dsi_worker_recognized_pages_total{service="worker"} 7`,
		"dsi_worker_queue_lag_seconds",
		"dsi_worker_document_extract_in_flight",
	} {
		if !strings.Contains(scraped, series) {
			t.Fatalf("missing %q in scrape:\n%s", series, scraped)
		}
	}
}

func TestWorkerMetricsIgnoreNonPositivePages(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.AddRecognizedPages("worker", 0)
	m.AddRecognizedPages("worker", -3)

	if strings.Contains(scrapeWorker(t, m), "dsi_worker_recognized_pages_total{") {
		t.Fatal("counter must stay unobserved for non-positive page counts")
	}
}
