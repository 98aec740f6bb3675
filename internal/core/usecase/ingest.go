package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// IngestionService turns uploaded documents into embedded chunks.
type IngestionService struct {
	docs       ports.DocumentRepository
	chunks     ports.ChunkRepository
	loader     ports.DocumentLoader
	splitters  ports.SplitterFactory
	settings   settingsReader
	resolver   *ProviderResolver
	summarizer *SummarizationEngine
	logger     *slog.Logger
}

func NewIngestionService(
	docs ports.DocumentRepository,
	chunks ports.ChunkRepository,
	loader ports.DocumentLoader,
	splitters ports.SplitterFactory,
	settings ports.SettingsRepository,
	resolver *ProviderResolver,
	summarizer *SummarizationEngine,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		docs:       docs,
		chunks:     chunks,
		loader:     loader,
		splitters:  splitters,
		settings:   settingsReader{repo: settings},
		resolver:   resolver,
		summarizer: summarizer,
		logger:     logger,
	}
}

// CreateEmbeddings runs the full ingestion pipeline for one document:
// UPLOADED -> PROCESSING -> PROCESSED, or FAILED with the error recorded
// in the document notes.
func (s *IngestionService) CreateEmbeddings(ctx context.Context, documentID string, regenerateSummary bool) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.docs.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return err
	}

	if err := s.ingest(ctx, doc, regenerateSummary); err != nil {
		s.logger.Error("ingestion failed", "document_id", documentID, "error", err)
		if statusErr := s.docs.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); statusErr != nil {
			s.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return err
	}

	if err := s.docs.UpdateStatus(ctx, documentID, domain.StatusProcessed, ""); err != nil {
		return err
	}
	s.logger.Info("document processed", "document_id", documentID, "chunks", doc.ChunkCount)
	return nil
}

func (s *IngestionService) ingest(ctx context.Context, doc *domain.Document, regenerateSummary bool) error {
	values, err := s.settings.load(ctx,
		domain.SettingChunkSize,
		domain.SettingChunkOverlap,
		domain.SettingDocumentSplitter,
		domain.SettingSummarizationEnabled,
	)
	if err != nil {
		return err
	}

	chunkSize, chunkOverlap := chunkParams(doc, values)
	if err := s.docs.SetChunkParams(ctx, doc.ID, chunkSize, chunkOverlap); err != nil {
		return err
	}

	blocks, err := s.loader.Load(doc)
	if err != nil {
		return err
	}
	text := strings.Join(blocks, "\n\n")
	if strings.TrimSpace(text) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "document has no extractable text", nil)
	}

	splitter, err := s.splitters.ForName(values[domain.SettingDocumentSplitter])
	if err != nil {
		return err
	}
	pieces := splitter.Split(text, chunkSize, chunkOverlap)

	embedder, err := s.resolver.Embedding(ctx)
	if err != nil {
		return err
	}

	chunks := make([]domain.EmbeddingChunk, 0, len(pieces))
	for _, piece := range pieces {
		composed := composeChunkText(doc.Name, doc.Description, piece)
		vector, err := embedder.Embed(ctx, composed)
		if err != nil {
			return err
		}
		chunks = append(chunks, domain.EmbeddingChunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Text:       composed,
			Vector:     vector,
		})
	}

	if err := s.chunks.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
		return err
	}
	if err := s.docs.SetChunkCount(ctx, doc.ID, len(chunks)); err != nil {
		return err
	}
	doc.ChunkCount = len(chunks)

	if regenerateSummary && boolSetting(values, domain.SettingSummarizationEnabled) {
		if err := s.summarizer.SummarizeAndStore(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEmbeddings drops embeddings for one document (resetting it to
// UPLOADED) or for every document when id is empty.
func (s *IngestionService) DeleteEmbeddings(ctx context.Context, documentID string) error {
	if documentID == "" {
		return s.chunks.DeleteAll(ctx)
	}

	if err := s.chunks.DeleteForDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.docs.SetChunkCount(ctx, documentID, 0); err != nil {
		return err
	}
	return s.docs.UpdateStatus(ctx, documentID, domain.StatusUploaded, "")
}
