package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindset-labs/rag-ai/internal/bootstrap"
	"github.com/mindset-labs/rag-ai/internal/config"
	"github.com/mindset-labs/rag-ai/internal/observability/logging"
	"github.com/mindset-labs/rag-ai/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("worker")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(cfg.ServiceName)
	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		OnQueueLag: workerMetrics.ObserveQueueLag,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeIngestion(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.IngestTimeout)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.Ingestion.CreateEmbeddings(processCtx, documentID, true)
		workerMetrics.FinishDocument(time.Since(start), processErr)
		if processErr == nil {
			if doc, err := app.Documents.GetByID(handlerCtx, documentID); err == nil {
				workerMetrics.ObserveDocumentChunks(doc.ChunkCount)
			}
		}
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
