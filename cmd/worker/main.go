package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dealsense/sales-intel/internal/bootstrap"
	"github.com/dealsense/sales-intel/internal/config"
	"github.com/dealsense/sales-intel/internal/observability/logging"
	"github.com/dealsense/sales-intel/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", workerMetrics.Handler())
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, metricsMux); err != nil {
			slog.Error("worker metrics server error", "error", err)
		}
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, documentID string) error {
		if doc, err := app.Repo.GetByID(handlerCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(doc.CreatedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(serviceName, time.Since(start), processErr)

		if processErr != nil {
			slog.Error("document processing failed", "document_id", documentID, "error", processErr)
			return processErr
		}
		if doc, err := app.Repo.GetByID(handlerCtx, documentID); err == nil && doc.UsedRecognition {
			workerMetrics.AddRecognizedPages(serviceName, doc.Pages)
		}
		return nil
	})
	if err != nil {
		slog.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}
}
