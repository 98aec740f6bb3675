package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindset-labs/rag-ai/internal/config"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
	"github.com/mindset-labs/rag-ai/internal/core/usecase"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/chunking"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/llm"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/loader"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/queue/nats"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/repository/postgres"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/resilience"
	"github.com/mindset-labs/rag-ai/internal/infrastructure/scraper"
)

// App wires every adapter and service the binaries need. Both cmd/api
// and cmd/worker boot through here so they always agree on schema,
// destinations and queue subjects.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Documents ports.DocumentRepository

	Chat       *usecase.ChatService
	DocumentUC *usecase.DocumentService
	Ingestion  *usecase.IngestionService
	Summaries  *usecase.SummarizationEngine
	Bots       *usecase.BotService

	closeFn func()
}

// Options carries binary-specific hooks.
type Options struct {
	// OnQueueLag observes publish-to-delivery delay for consumed
	// ingestion messages. Used by the worker's metrics.
	OnQueueLag func(time.Duration)
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	chunks := postgres.NewChunkRepository(db)
	bots := postgres.NewBotRepository(db)
	conversations := postgres.NewConversationRepository(db)
	settings := postgres.NewSettingsRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		OnQueueLag:         opts.OnQueueLag,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	destinations := make(map[string]llm.Destination, len(cfg.Destinations))
	for name, dest := range cfg.Destinations {
		destinations[name] = llm.Destination{URL: dest.URL, APIKey: dest.APIKey}
	}
	gateway := llm.NewGateway(destinations, cfg.ProviderTimeout)
	reranker := llm.NewCohereReranker(cfg.ProviderTimeout)

	resolver := usecase.NewProviderResolver(bots, settings, gateway)
	docLoader := loader.New()
	splitters := chunking.NewFactory()

	summaries := usecase.NewSummarizationEngine(docs, docLoader, settings, resolver, chunking.NewRecursiveSplitter(), logger)
	retrieval := usecase.NewRetrievalEngine(chunks, settings, resolver, reranker, logger)
	ingestion := usecase.NewIngestionService(docs, chunks, docLoader, splitters, settings, resolver, summaries, logger)
	chat := usecase.NewChatService(bots, conversations, retrieval, resolver, logger)
	documentUC := usecase.NewDocumentService(docs, scraper.New(cfg.ProviderTimeout), queue, logger)
	botUC := usecase.NewBotService(bots, docs)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		Documents: docs,

		Chat:       chat,
		DocumentUC: documentUC,
		Ingestion:  ingestion,
		Summaries:  summaries,
		Bots:       botUC,

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
