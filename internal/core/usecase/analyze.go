package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
)

// AnalyzeUseCase streams one analysis over the ready document set. Each call
// opens its own assembler session; concurrent calls never share a buffer.
type AnalyzeUseCase struct {
	repo          ports.DocumentRepository
	streamer      ports.AnalysisStreamer
	assembler     ports.AnalysisAssembler
	cache         ports.AnalysisCache
	contextBudget int
}

func NewAnalyzeUseCase(
	repo ports.DocumentRepository,
	streamer ports.AnalysisStreamer,
	assembler ports.AnalysisAssembler,
	cache ports.AnalysisCache,
	contextBudget int,
) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		repo:          repo,
		streamer:      streamer,
		assembler:     assembler,
		cache:         cache,
		contextBudget: contextBudget,
	}
}

func (uc *AnalyzeUseCase) Analyze(
	ctx context.Context,
	question string,
	onSnapshot func(domain.AnalysisSnapshot),
) (*domain.AnalysisResult, error) {
	docs, err := uc.repo.ListByStatus(ctx, domain.StatusReady)
	if err != nil {
		return nil, fmt.Errorf("list ready documents: %w", err)
	}

	key := cacheKey(question, fingerprint(docs))
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(key); ok {
			return &domain.AnalysisResult{Analysis: cached, FromCache: true}, nil
		}
	}

	sess := uc.assembler.NewSession()
	err = uc.streamer.StreamAnalysis(ctx, question, buildDocumentContext(docs, uc.contextBudget), func(fragment string) {
		fields := sess.Append(fragment)
		if onSnapshot != nil {
			onSnapshot(domain.AnalysisSnapshot{Fields: fields})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("stream analysis: %w", err)
	}

	analysis, err := sess.Finalize()
	if err != nil {
		return nil, fmt.Errorf("finalize analysis: %w", err)
	}

	if uc.cache != nil {
		uc.cache.Put(key, analysis)
	}
	return &domain.AnalysisResult{Analysis: analysis}, nil
}

func cacheKey(question, fingerprint string) string {
	sum := sha256.Sum256([]byte(question + "\x00" + fingerprint))
	return hex.EncodeToString(sum[:])
}

// fingerprint identifies the current ready document set; any change to it
// produces a different cache key.
func fingerprint(docs []domain.Document) string {
	h := sha256.New()
	for _, doc := range docs {
		h.Write([]byte(doc.ID))
		h.Write([]byte{0})
		h.Write([]byte(doc.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
