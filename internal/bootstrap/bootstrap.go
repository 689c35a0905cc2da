package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dealsense/sales-intel/internal/config"
	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
	"github.com/dealsense/sales-intel/internal/core/usecase"
	"github.com/dealsense/sales-intel/internal/infrastructure/cache"
	"github.com/dealsense/sales-intel/internal/infrastructure/extractor"
	"github.com/dealsense/sales-intel/internal/infrastructure/llm/ollama"
	"github.com/dealsense/sales-intel/internal/infrastructure/office"
	"github.com/dealsense/sales-intel/internal/infrastructure/queue/nats"
	"github.com/dealsense/sales-intel/internal/infrastructure/repository/postgres"
	"github.com/dealsense/sales-intel/internal/infrastructure/resilience"
	"github.com/dealsense/sales-intel/internal/infrastructure/storage/localfs"
	"github.com/dealsense/sales-intel/internal/infrastructure/streamparse"
	"github.com/dealsense/sales-intel/internal/observability/logging"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AnalyzeUC ports.AnalysisService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	ollamaClient := ollama.NewWithOptions(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		cfg.OllamaVisionModel,
		ollama.Options{
			RecognitionRPS:     cfg.RecognitionRPS,
			ResilienceExecutor: executor,
		},
	)
	recognizer := ollama.NewRecognizer(ollamaClient)
	streamer := ollama.NewStreamer(ollamaClient)

	officeConv := office.NewConverter(cfg.OfficeConvertCommand)
	textExtractor := extractor.New(extractor.NewFitzEngine(), recognizer, officeConv)
	analysisCache := cache.NewMemory()
	assembler := streamparse.NewAssembler(domain.AnalysisFieldNames)
	progressSinks := logging.ExtractionProgressSink(slog.Default())

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, textExtractor, analysisCache, progressSinks)
	analyzeUC := usecase.NewAnalyzeUseCase(repo, streamer, assembler, analysisCache, cfg.ContextBudget)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AnalyzeUC: analyzeUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
