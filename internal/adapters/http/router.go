package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
	"github.com/dealsense/sales-intel/internal/observability/metrics"
)

type Router struct {
	ingest   ports.DocumentIngestor
	reader   ports.DocumentReader
	analysis ports.AnalysisService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	ingest ports.DocumentIngestor,
	reader ports.DocumentReader,
	analysis ports.AnalysisService,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingest:   ingest,
		reader:   reader,
		analysis: analysis,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/analysis", rt.streamAnalysis)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, r, "upload document", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload("api", fileHeader.Size)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	status := domain.DocumentStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.StatusReady
	}
	switch status {
	case domain.StatusProcessing, domain.StatusReady, domain.StatusError:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status filter"})
		return
	}

	docs, err := rt.reader.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, r, "list documents", err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) streamAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	start := time.Now()
	snapshots := 0
	result, err := rt.analysis.Analyze(r.Context(), req.Question, func(snapshot domain.AnalysisSnapshot) {
		snapshots++
		stream.sendEvent("snapshot", snapshot)
	})
	if err != nil {
		slog.Error("analysis_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		rt.recordAnalysis(analysisOutcome(err), snapshots, time.Since(start))
		stream.sendEvent("error", map[string]string{"error": err.Error()})
		stream.done()
		return
	}

	if result.FromCache && rt.metrics != nil {
		rt.metrics.RecordAnalysisCacheHit("api")
	}
	rt.recordAnalysis("success", snapshots, time.Since(start))
	stream.sendEvent("analysis", result.Analysis)
	stream.done()
}

func (rt *Router) recordAnalysis(outcome string, snapshots int, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnalysis("api", outcome, snapshots, duration)
}

func analysisOutcome(err error) string {
	if domain.IsKind(err, domain.ErrParseFailure) {
		return "parse_failure"
	}
	return "error"
}

func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"operation", operation,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
