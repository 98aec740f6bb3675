package ports

import (
	"context"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// ChatRequest is one user turn. An empty ConversationID starts a new
// conversation; PrivateMode suppresses all persistence.
type ChatRequest struct {
	BotID          string
	ConversationID string
	UserID         string
	UserQuery      string
	PrivateMode    bool
}

type ChatService interface {
	GetChatRagResponse(ctx context.Context, req ChatRequest) (*domain.ChatResponse, error)
	DeleteChatData(ctx context.Context, conversationID string) error
}

type IngestionService interface {
	CreateEmbeddings(ctx context.Context, documentID string, regenerateSummary bool) error
	DeleteEmbeddings(ctx context.Context, documentID string) error
}

type SummaryService interface {
	RegenerateSummaries(ctx context.Context, documentID string) error
	RegenerateMissingSummaries(ctx context.Context) error
}

// UploadRequest carries a new document. A name that parses as an http(s)
// URL switches the source to website scraping.
type UploadRequest struct {
	Name         string
	Description  string
	Type         string
	Content      []byte
	ChunkSize    int
	ChunkOverlap int
}

type DocumentService interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)
	Replace(ctx context.Context, id string, content []byte) (*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type BotService interface {
	CreateBot(ctx context.Context, bot *domain.Bot) (*domain.Bot, error)
	AttachDocument(ctx context.Context, botID, documentID string) (*domain.DocumentBotRelationship, error)
}
