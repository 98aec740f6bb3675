package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/mindset-labs/rag-ai/internal/config"
	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

func newTestHandler(cfg config.Config, svc Services) http.Handler {
	if svc.Chat == nil {
		svc.Chat = &chatFake{}
	}
	if svc.Documents == nil {
		svc.Documents = &documentsFake{}
	}
	if svc.Ingestion == nil {
		svc.Ingestion = &ingestionFake{}
	}
	if svc.Summaries == nil {
		svc.Summaries = &summariesFake{}
	}
	if svc.Bots == nil {
		svc.Bots = &botsFake{}
	}
	if svc.DocumentStore == nil {
		svc.DocumentStore = &documentStoreFake{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, svc, logger, nil).Handler()
}

type chatFake struct {
	resp    *domain.ChatResponse
	err     error
	lastReq ports.ChatRequest
	deleted string
}

func (f *chatFake) GetChatRagResponse(_ context.Context, req ports.ChatRequest) (*domain.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &domain.ChatResponse{Role: domain.RoleAssistant, Content: "hello"}, nil
}

func (f *chatFake) DeleteChatData(_ context.Context, conversationID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = conversationID
	return nil
}

type documentsFake struct {
	err      error
	uploaded ports.UploadRequest
	replaced string
	deleted  string
}

func (f *documentsFake) Upload(_ context.Context, req ports.UploadRequest) (*domain.Document, error) {
	f.uploaded = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-1", Name: req.Name, Status: domain.StatusUploaded}, nil
}

func (f *documentsFake) Replace(_ context.Context, id string, content []byte) (*domain.Document, error) {
	f.replaced = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Status: domain.StatusUploaded}, nil
}

func (f *documentsFake) Get(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Name: "Guide"}, nil
}

func (f *documentsFake) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

type ingestionFake struct {
	err        error
	created    string
	regenerate bool
	deleted    string
	deleteHit  bool
}

func (f *ingestionFake) CreateEmbeddings(_ context.Context, documentID string, regenerateSummary bool) error {
	f.created = documentID
	f.regenerate = regenerateSummary
	return f.err
}

func (f *ingestionFake) DeleteEmbeddings(_ context.Context, documentID string) error {
	f.deleted = documentID
	f.deleteHit = true
	return f.err
}

type summariesFake struct {
	err        error
	documentID string
	missing    bool
}

func (f *summariesFake) RegenerateSummaries(_ context.Context, documentID string) error {
	f.documentID = documentID
	return f.err
}

func (f *summariesFake) RegenerateMissingSummaries(context.Context) error {
	f.missing = true
	return f.err
}

type botsFake struct {
	err      error
	created  *domain.Bot
	attached [2]string
}

func (f *botsFake) CreateBot(_ context.Context, bot *domain.Bot) (*domain.Bot, error) {
	f.created = bot
	if f.err != nil {
		return nil, f.err
	}
	out := *bot
	out.ID = "bot-1"
	return &out, nil
}

func (f *botsFake) AttachDocument(_ context.Context, botID, documentID string) (*domain.DocumentBotRelationship, error) {
	f.attached = [2]string{botID, documentID}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DocumentBotRelationship{BotID: botID, DocumentID: documentID}, nil
}

type documentStoreFake struct {
	ports.DocumentRepository
	docs []domain.Document
	err  error
}

func (f *documentStoreFake) List(context.Context) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}
