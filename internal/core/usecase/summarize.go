package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// maxSummaryRounds caps the summarize-resplit loop. Text that still
// shrinks after this many rounds is pathological input.
const maxSummaryRounds = 8

// SummarizationEngine condenses whole documents into single summaries by
// repeatedly summarizing chunks and re-splitting until the text stops
// shrinking.
type SummarizationEngine struct {
	docs     ports.DocumentRepository
	loader   ports.DocumentLoader
	settings settingsReader
	resolver *ProviderResolver
	splitter ports.TextSplitter
	logger   *slog.Logger
}

func NewSummarizationEngine(
	docs ports.DocumentRepository,
	loader ports.DocumentLoader,
	settings ports.SettingsRepository,
	resolver *ProviderResolver,
	splitter ports.TextSplitter,
	logger *slog.Logger,
) *SummarizationEngine {
	return &SummarizationEngine{
		docs:     docs,
		loader:   loader,
		settings: settingsReader{repo: settings},
		resolver: resolver,
		splitter: splitter,
		logger:   logger,
	}
}

// Summarize reduces text to a single summary string.
func (e *SummarizationEngine) Summarize(ctx context.Context, text string) (string, error) {
	values, err := e.settings.load(ctx, domain.SettingSummarizationChunkSize)
	if err != nil {
		return "", err
	}
	chunkSize := intSetting(values, domain.SettingSummarizationChunkSize, domain.DefaultSummarizationChunkSize)

	provider, err := e.resolver.Summarization(ctx)
	if err != nil {
		return "", err
	}

	current := sanitizeForSummary(text)
	for round := 0; round < maxSummaryRounds; round++ {
		chunks := e.splitter.Split(current, chunkSize, 0)
		if len(chunks) == 0 {
			return "", domain.WrapError(domain.ErrInvalidInput, "summarize empty text", nil)
		}
		// A single chunk is already as condensed as the loop can make it.
		if len(chunks) == 1 {
			return chunks[0], nil
		}

		summaries := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			summary, err := e.summarizeChunk(ctx, provider, chunk)
			if err != nil {
				return "", err
			}
			summaries = append(summaries, summary)
		}
		next := strings.Join(summaries, "\r\n")

		// No further shrinkage means another round would only burn
		// provider calls. The round's input chunks are the last text known
		// to still shrink, so they become the result.
		if len(e.splitter.Split(next, chunkSize, 0)) == len(chunks) {
			return strings.Join(chunks, "\r\n"), nil
		}
		current = next
	}

	return "", domain.WrapError(domain.ErrInvalidInput, "summarization did not converge", nil)
}

func (e *SummarizationEngine) summarizeChunk(ctx context.Context, provider ports.ChatProvider, chunk string) (string, error) {
	completion, err := provider.Complete(ctx,
		[]domain.PromptTurn{{Role: domain.RoleUser, Content: chunkSummaryPrompt(chunk)}},
		domain.ChatParams{Temperature: helperTemperature},
	)
	if err != nil {
		return "", err
	}
	// Model output feeds the next round's prompts, so it gets the same
	// scrub as the source text.
	return strings.TrimSpace(sanitizeForSummary(completion.Content)), nil
}

// RegenerateSummaries rebuilds the summary and summary vector for one
// document, or for every processed document when id is empty. Each
// document succeeds or fails on its own.
func (e *SummarizationEngine) RegenerateSummaries(ctx context.Context, documentID string) error {
	values, err := e.settings.load(ctx, domain.SettingSummarizationEnabled)
	if err != nil {
		return err
	}
	if !boolSetting(values, domain.SettingSummarizationEnabled) {
		return domain.WrapError(domain.ErrConfiguration, "document summarization is not enabled", nil)
	}

	if documentID != "" {
		return e.regenerateOne(ctx, documentID)
	}

	docs, err := e.docs.List(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for _, doc := range docs {
		if doc.Status != domain.StatusProcessed {
			continue
		}
		if err := e.regenerateOne(ctx, doc.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RegenerateMissingSummaries backfills summaries for processed documents
// that have none.
func (e *SummarizationEngine) RegenerateMissingSummaries(ctx context.Context) error {
	ids, err := e.docs.ListMissingSummaries(ctx)
	if err != nil {
		return err
	}
	var firstErr error
	for _, id := range ids {
		if err := e.RegenerateSummaries(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *SummarizationEngine) regenerateOne(ctx context.Context, documentID string) error {
	doc, err := e.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	// The stale summary and its vector go away together before the
	// rebuild; SaveSummary later writes the fresh pair together.
	if err := e.docs.ClearSummary(ctx, documentID); err != nil {
		return err
	}

	if err := e.summarizeDocument(ctx, doc); err != nil {
		if statusErr := e.docs.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); statusErr != nil {
			e.logger.Error("failed to mark document failed", "document_id", documentID, "error", statusErr)
		}
		return err
	}

	return e.docs.UpdateStatus(ctx, documentID, domain.StatusProcessed, "")
}

// SummarizeDocument extracts the document text, summarizes it and stores
// the summary with its embedding.
func (e *SummarizationEngine) summarizeDocument(ctx context.Context, doc *domain.Document) error {
	blocks, err := e.loader.Load(doc)
	if err != nil {
		return err
	}
	summary, err := e.Summarize(ctx, strings.Join(blocks, "\n\n"))
	if err != nil {
		return err
	}

	embedder, err := e.resolver.Embedding(ctx)
	if err != nil {
		return err
	}
	vector, err := embedder.Embed(ctx, summary)
	if err != nil {
		return err
	}

	return e.docs.SaveSummary(ctx, doc.ID, summary, vector)
}

// SummarizeAndStore runs summarization for a freshly ingested document.
func (e *SummarizationEngine) SummarizeAndStore(ctx context.Context, doc *domain.Document) error {
	return e.summarizeDocument(ctx, doc)
}

// sanitizeForSummary drops runes outside the ASCII range and replaces
// escaped double quotes with single quotes before the text reaches the
// summarization prompts.
func sanitizeForSummary(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}
	return strings.ReplaceAll(sb.String(), `\"`, "'")
}
