package ports

import (
	"context"
	"io"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)
}

// AnalysisService runs one streamed analysis over the ready document set.
// onSnapshot is invoked after every fragment with the current best-effort
// view; the returned result holds the authoritative final parse.
type AnalysisService interface {
	Analyze(ctx context.Context, question string, onSnapshot func(domain.AnalysisSnapshot)) (*domain.AnalysisResult, error)
}
