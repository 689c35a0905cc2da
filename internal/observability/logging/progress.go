package logging

import (
	"log/slog"

	"github.com/dealsense/sales-intel/internal/core/ports"
)

// ExtractionProgressSink reports a document's extraction progress into the
// structured log. Percent ticks are debug noise; recognition toggles are
// operationally interesting and log at info.
func ExtractionProgressSink(logger *slog.Logger) ports.ProgressSinkFactory {
	return func(documentID string) ports.ProgressSink {
		return &progressSink{logger: logger.With("document_id", documentID)}
	}
}

type progressSink struct {
	logger *slog.Logger
}

func (s *progressSink) Progress(percent int) {
	s.logger.Debug("extraction_progress", "percent", percent)
}

func (s *progressSink) RecognitionActive(active bool) {
	s.logger.Info("recognition_active", "active", active)
}
