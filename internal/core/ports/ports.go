package ports

import (
	"context"
	"io"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, extraction domain.Extraction) error
}

// ObjectStorage stores raw uploaded bytes until extraction completes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes extraction events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// ProgressSink receives extraction progress signals: fractional progress in
// [0,100] and a flag for when remote recognition is running.
type ProgressSink interface {
	Progress(percent int)
	RecognitionActive(active bool)
}

// ProgressSinkFactory builds a sink scoped to one document's extraction.
// A nil factory means progress is discarded.
type ProgressSinkFactory func(documentID string) ProgressSink

// TextExtractor produces the best available plain-text rendition of a file.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document, src io.Reader, sink ProgressSink) (domain.Extraction, error)
}

// RecognitionClient transcribes text from one encoded still image. An empty
// transcription is a valid answer, not an error.
type RecognitionClient interface {
	Recognize(ctx context.Context, imageBytes []byte, mimeType string) (string, error)
}

// OfficeConverter turns an office-format container into plain text. Opaque
// external helper; format parsing is not reimplemented here.
type OfficeConverter interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// AnalysisStreamer runs one generation request and hands every emitted text
// fragment to the callback in arrival order.
type AnalysisStreamer interface {
	StreamAnalysis(ctx context.Context, question, documentContext string, emit func(fragment string)) error
}

// AnalysisAssembler opens reconciliation sessions for generation streams.
// One session per request; sessions are not shared.
type AnalysisAssembler interface {
	NewSession() AnalysisSession
}

// AnalysisSession accumulates stream fragments into best-effort field
// snapshots and produces the authoritative parse once the stream closes.
type AnalysisSession interface {
	Append(fragment string) map[string]string
	Finalize() (*domain.Analysis, error)
}

// AnalysisCache serves repeated identical requests without a remote call.
// Entries are invalidated when the document set changes, never by time.
type AnalysisCache interface {
	Get(key string) (*domain.Analysis, bool)
	Put(key string, analysis *domain.Analysis)
	Reset()
}
