package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// rerankPoolSize is how far the candidate pool widens before reranking
// narrows it back down to the configured top-k.
const rerankPoolSize = 50

// RetrievalEngine finds the chunks most relevant to a user query within
// one bot's document scope.
type RetrievalEngine struct {
	chunks   ports.ChunkRepository
	settings settingsReader
	resolver *ProviderResolver
	reranker ports.Reranker
	logger   *slog.Logger
}

func NewRetrievalEngine(
	chunks ports.ChunkRepository,
	settings ports.SettingsRepository,
	resolver *ProviderResolver,
	reranker ports.Reranker,
	logger *slog.Logger,
) *RetrievalEngine {
	return &RetrievalEngine{
		chunks:   chunks,
		settings: settingsReader{repo: settings},
		resolver: resolver,
		reranker: reranker,
		logger:   logger,
	}
}

// Retrieve returns ranked chunks for the query plus whether a
// hypothetical answer was embedded instead of the raw query.
func (e *RetrievalEngine) Retrieve(ctx context.Context, bot *domain.Bot, chatProvider ports.ChatProvider, query string) ([]domain.RetrievedChunk, bool, error) {
	values, err := e.settings.load(ctx,
		domain.SettingComparisonAlgorithm,
		domain.SettingDocumentsTopK,
		domain.SettingSummarizationEnabled,
		domain.SettingCohereAPIKey,
	)
	if err != nil {
		return nil, false, err
	}

	algorithmRaw, err := requiredSetting(values, domain.SettingComparisonAlgorithm)
	if err != nil {
		return nil, false, err
	}
	algorithm, err := domain.ParseSimilarityAlgorithm(algorithmRaw)
	if err != nil {
		return nil, false, err
	}
	topK := intSetting(values, domain.SettingDocumentsTopK, domain.DefaultDocumentsTopK)

	if bot.DocLevelRankEnabled && !boolSetting(values, domain.SettingSummarizationEnabled) {
		return nil, false, domain.WrapError(domain.ErrConfiguration,
			"document-level ranking requires document summarization to be enabled", nil)
	}

	// A rerank bot without the key is misconfigured regardless of what
	// the search would return, so this fails before any provider call.
	rerankKey := ""
	if bot.RerankEnabled {
		rerankKey, err = requiredSetting(values, domain.SettingCohereAPIKey)
		if err != nil {
			return nil, false, err
		}
	}

	embedText, usedHyDE := e.hypotheticalAnswer(ctx, bot, chatProvider, query)

	embedder, err := e.resolver.Embedding(ctx)
	if err != nil {
		return nil, false, err
	}
	vector, err := embedder.Embed(ctx, embedText)
	if err != nil {
		return nil, false, err
	}

	poolSize := topK
	if bot.RerankEnabled {
		poolSize = rerankPoolSize
	}
	chunks, err := e.chunks.Search(ctx, ports.SearchQuery{
		BotID:         bot.ID,
		Vector:        vector,
		Algorithm:     algorithm,
		TopK:          poolSize,
		DocumentLevel: bot.DocLevelRankEnabled,
	})
	if err != nil {
		return nil, false, err
	}

	if bot.RerankEnabled && len(chunks) > 0 {
		chunks, err = e.rerank(ctx, rerankKey, query, chunks, topK)
		if err != nil {
			return nil, false, err
		}
	}

	return chunks, usedHyDE, nil
}

// hypotheticalAnswer asks the bot's own model to draft an answer worth
// embedding. Any failure, an empty reply, or the not-a-question sentinel
// falls back to the raw query.
func (e *RetrievalEngine) hypotheticalAnswer(ctx context.Context, bot *domain.Bot, chatProvider ports.ChatProvider, query string) (string, bool) {
	if !bot.HyDEEnabled {
		return query, false
	}

	completion, err := chatProvider.Complete(ctx,
		[]domain.PromptTurn{{Role: domain.RoleUser, Content: hydePrompt(query)}},
		domain.ChatParams{Temperature: helperTemperature},
	)
	if err != nil {
		e.logger.Warn("hyde generation failed, embedding raw query", "bot_id", bot.ID, "error", err)
		return query, false
	}
	answer := strings.TrimSpace(completion.Content)
	if answer == "" || answer == hydeNotAQuestion {
		return query, false
	}
	return answer, true
}

// rerank reorders the widened candidate pool by relevance to the raw
// query and keeps topK results.
func (e *RetrievalEngine) rerank(ctx context.Context, apiKey, query string, chunks []domain.RetrievedChunk, topK int) ([]domain.RetrievedChunk, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	results, err := e.reranker.Rerank(ctx, apiKey, query, texts, topK)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunk := chunks[res.Index]
		relevance := res.RelevanceScore
		chunk.RerankScore = &relevance
		out = append(out, chunk)
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
