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

	httpadapter "github.com/mindset-labs/rag-ai/internal/adapters/http"
	"github.com/mindset-labs/rag-ai/internal/bootstrap"
	"github.com/mindset-labs/rag-ai/internal/config"
	"github.com/mindset-labs/rag-ai/internal/observability/logging"
	"github.com/mindset-labs/rag-ai/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("api")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(cfg.ServiceName)
	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Chat:          app.Chat,
		Documents:     app.DocumentUC,
		Ingestion:     app.Ingestion,
		Summaries:     app.Summaries,
		Bots:          app.Bots,
		DocumentStore: app.Documents,
	}, logger, httpMetrics)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
