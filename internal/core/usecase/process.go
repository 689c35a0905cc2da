package usecase

import (
	"context"
	"fmt"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
)

// ProcessDocumentUseCase runs the per-document extraction state machine:
// processing on entry, ready with the extracted text attached on success,
// error with the text discarded on any failure. Both terminal states; a new
// upload starts a fresh document.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	cache     ports.AnalysisCache
	sinks     ports.ProgressSinkFactory
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	cache ports.AnalysisCache,
	sinks ports.ProgressSinkFactory,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		cache:     cache,
		sinks:     sinks,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	// The document set is about to change either way.
	defer uc.invalidateCache()

	extraction, err := uc.extract(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveExtraction(ctx, documentID, extraction); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return fmt.Errorf("save extraction: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, documentID string) (domain.Extraction, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("fetch document by id: %w", err)
	}

	src, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("open stored document: %w", err)
	}
	defer src.Close()

	var sink ports.ProgressSink
	if uc.sinks != nil {
		sink = uc.sinks(doc.ID)
	}

	extraction, err := uc.extractor.Extract(ctx, doc, src, sink)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("extract text: %w", err)
	}
	return extraction, nil
}

func (uc *ProcessDocumentUseCase) invalidateCache() {
	if uc.cache != nil {
		uc.cache.Reset()
	}
}
