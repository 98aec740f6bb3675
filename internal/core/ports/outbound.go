package ports

import (
	"context"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// DocumentRepository persists documents and their ingestion state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	Update(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	ListMissingSummaries(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, notes string) error
	SetChunkParams(ctx context.Context, id string, chunkSize, chunkOverlap int) error
	SetChunkCount(ctx context.Context, id string, count int) error
	SaveSummary(ctx context.Context, id, summary string, vector []float32) error
	ClearSummary(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SearchQuery scopes a similarity search to one bot's processed documents.
type SearchQuery struct {
	BotID         string
	Vector        []float32
	Algorithm     domain.SimilarityAlgorithm
	TopK          int
	DocumentLevel bool
}

// ChunkRepository owns embedding chunks. ReplaceForDocument swaps a
// document's chunk set atomically.
type ChunkRepository interface {
	ReplaceForDocument(ctx context.Context, documentID string, chunks []domain.EmbeddingChunk) error
	DeleteForDocument(ctx context.Context, documentID string) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, q SearchQuery) ([]domain.RetrievedChunk, error)
}

type BotRepository interface {
	GetBot(ctx context.Context, id string) (*domain.Bot, error)
	GetConfig(ctx context.Context, id string) (*domain.BotConfig, error)
	CreateBot(ctx context.Context, bot *domain.Bot) error
	CreateRelationship(ctx context.Context, rel *domain.DocumentBotRelationship) error
}

type ConversationRepository interface {
	GetForBot(ctx context.Context, id, botID string) (*domain.Conversation, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListRecent(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository reads named runtime settings. Missing names are
// simply absent from the result map.
type SettingsRepository interface {
	Get(ctx context.Context, names ...string) (map[string]string, error)
}

// ChatProvider is one configured generative-AI destination.
type ChatProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error)
}

// ProviderGateway resolves a chat provider from a bot configuration.
type ProviderGateway interface {
	ForConfig(cfg *domain.BotConfig) (ChatProvider, error)
}

// Reranker reorders retrieval candidates by relevance to the query.
type Reranker interface {
	Rerank(ctx context.Context, apiKey, query string, candidates []string, topN int) ([]RerankResult, error)
}

type RerankResult struct {
	Index          int
	RelevanceScore float64
}

// DocumentLoader extracts plain-text blocks from raw document content.
type DocumentLoader interface {
	Load(doc *domain.Document) ([]string, error)
}

type WebScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type MessageQueue interface {
	PublishIngestion(ctx context.Context, documentID string) error
	SubscribeIngestion(ctx context.Context, handler func(ctx context.Context, documentID string) error) error
	Close()
}

// TextSplitter cuts text into bounded chunks.
type TextSplitter interface {
	Split(text string, chunkSize, chunkOverlap int) []string
}

// SplitterFactory maps a configured splitter name to an implementation.
type SplitterFactory interface {
	ForName(name string) (TextSplitter, error)
}
