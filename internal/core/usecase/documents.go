package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// DocumentService manages the document lifecycle around ingestion. New
// and replaced content always re-enters the pipeline through the queue.
type DocumentService struct {
	docs    ports.DocumentRepository
	scraper ports.WebScraper
	queue   ports.MessageQueue
	logger  *slog.Logger
	now     func() time.Time
}

func NewDocumentService(
	docs ports.DocumentRepository,
	scraper ports.WebScraper,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		scraper: scraper,
		queue:   queue,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *DocumentService) Upload(ctx context.Context, req ports.UploadRequest) (*domain.Document, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "document name is required", nil)
	}

	content := req.Content
	docType := req.Type
	if isWebURL(name) {
		text, err := s.scraper.Scrape(ctx, name)
		if err != nil {
			return nil, err
		}
		content = []byte(text)
		docType = domain.DocumentTypeWebsite
	}
	if len(content) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "document content is empty", nil)
	}
	if docType == "" {
		docType = domain.DocumentTypeText
	}

	now := s.now()
	doc := &domain.Document{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  req.Description,
		Type:         docType,
		Content:      content,
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: req.ChunkOverlap,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.queue.PublishIngestion(ctx, doc.ID); err != nil {
		// The document stays UPLOADED; ingestion can be triggered again
		// through the embeddings endpoint.
		s.logger.Error("failed to publish ingestion event", "document_id", doc.ID, "error", err)
		return nil, err
	}
	return doc, nil
}

// Replace swaps the document content and sends it back through
// ingestion.
func (s *DocumentService) Replace(ctx context.Context, id string, content []byte) (*domain.Document, error) {
	if len(content) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "document content is empty", nil)
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Content = content
	doc.Status = domain.StatusUploaded
	doc.Notes = ""
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.queue.PublishIngestion(ctx, doc.ID); err != nil {
		s.logger.Error("failed to publish ingestion event", "document_id", doc.ID, "error", err)
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}

func isWebURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}
