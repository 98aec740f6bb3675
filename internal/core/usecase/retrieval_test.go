package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

func newRetrievalFixture(settings map[string]string) (*RetrievalEngine, *fakeChunkRepo, *fakeProvider, *fakeReranker) {
	bots := newFakeBotRepo()
	bots.configs["embed-cfg"] = &domain.BotConfig{ID: "embed-cfg", Name: "embeddings", Type: domain.ProviderOpenAI, DestinationName: "openai"}

	if settings == nil {
		settings = map[string]string{}
	}
	if _, ok := settings[domain.SettingEmbeddingModelConfigID]; !ok {
		settings[domain.SettingEmbeddingModelConfigID] = "embed-cfg"
	}
	settingsRepo := &fakeSettingsRepo{values: settings}

	embedder := &fakeProvider{}
	resolver := NewProviderResolver(bots, settingsRepo, &fakeGateway{provider: embedder})
	chunks := newFakeChunkRepo()
	reranker := &fakeReranker{}

	engine := NewRetrievalEngine(chunks, settingsRepo, resolver, reranker, testLogger())
	return engine, chunks, embedder, reranker
}

func TestRetrieveEmbedsRawQueryWhenHyDEDisabled(t *testing.T) {
	engine, chunks, embedder, _ := newRetrievalFixture(map[string]string{
		domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
	})
	chunks.searchOut = []domain.RetrievedChunk{{DocumentID: "d", Text: "chunk"}}
	bot := &domain.Bot{ID: "bot-1"}

	got, usedHyDE, err := engine.Retrieve(context.Background(), bot, &fakeProvider{}, "what is x?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if usedHyDE {
		t.Fatalf("usedHyDE = true, want false")
	}
	if len(got) != 1 {
		t.Fatalf("chunks = %d, want 1", len(got))
	}
	if len(embedder.embedded) != 1 || embedder.embedded[0] != "what is x?" {
		t.Fatalf("embedded = %v, want raw query", embedder.embedded)
	}
}

func TestRetrieveUsesHypotheticalAnswer(t *testing.T) {
	engine, _, embedder, _ := newRetrievalFixture(map[string]string{
		domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
	})
	bot := &domain.Bot{ID: "bot-1", HyDEEnabled: true}
	chatProvider := &fakeProvider{
		completeFn: func(turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error) {
			if params.Temperature != helperTemperature {
				t.Errorf("temperature = %v, want %v", params.Temperature, helperTemperature)
			}
			return &domain.Completion{Content: "a plausible answer"}, nil
		},
	}

	_, usedHyDE, err := engine.Retrieve(context.Background(), bot, chatProvider, "what is x?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !usedHyDE {
		t.Fatalf("usedHyDE = false, want true")
	}
	if embedder.embedded[0] != "a plausible answer" {
		t.Fatalf("embedded = %q, want hypothetical answer", embedder.embedded[0])
	}
}

func TestRetrieveFallsBackOnHyDESentinel(t *testing.T) {
	tests := []struct {
		name       string
		completeFn func([]domain.PromptTurn, domain.ChatParams) (*domain.Completion, error)
	}{
		{"not a question sentinel", func([]domain.PromptTurn, domain.ChatParams) (*domain.Completion, error) {
			return &domain.Completion{Content: hydeNotAQuestion}, nil
		}},
		{"empty reply", func([]domain.PromptTurn, domain.ChatParams) (*domain.Completion, error) {
			return &domain.Completion{Content: "  "}, nil
		}},
		{"provider error", func([]domain.PromptTurn, domain.ChatParams) (*domain.Completion, error) {
			return nil, errors.New("boom")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, embedder, _ := newRetrievalFixture(map[string]string{
				domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
			})
			bot := &domain.Bot{ID: "bot-1", HyDEEnabled: true}

			_, usedHyDE, err := engine.Retrieve(context.Background(), bot, &fakeProvider{completeFn: tt.completeFn}, "query text")
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}
			if usedHyDE {
				t.Fatalf("usedHyDE = true, want false")
			}
			if embedder.embedded[0] != "query text" {
				t.Fatalf("embedded = %q, want raw query", embedder.embedded[0])
			}
		})
	}
}

func TestRetrieveRequiresComparisonAlgorithm(t *testing.T) {
	engine, _, _, _ := newRetrievalFixture(map[string]string{})

	_, _, err := engine.Retrieve(context.Background(), &domain.Bot{ID: "bot-1"}, &fakeProvider{}, "q")
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRetrieveDocLevelRequiresSummarization(t *testing.T) {
	engine, _, _, _ := newRetrievalFixture(map[string]string{
		domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
	})
	bot := &domain.Bot{ID: "bot-1", DocLevelRankEnabled: true}

	_, _, err := engine.Retrieve(context.Background(), bot, &fakeProvider{}, "q")
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRetrieveRerankWidensPoolAndReorders(t *testing.T) {
	engine, chunks, _, reranker := newRetrievalFixture(map[string]string{
		domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
		domain.SettingDocumentsTopK:       "2",
		domain.SettingCohereAPIKey:        "cohere-key",
	})
	chunks.searchOut = []domain.RetrievedChunk{
		{DocumentID: "d1", Text: "first", Score: 0.9},
		{DocumentID: "d2", Text: "second", Score: 0.8},
		{DocumentID: "d3", Text: "third", Score: 0.7},
	}
	reranker.results = []ports.RerankResult{
		{Index: 2, RelevanceScore: 0.99},
		{Index: 0, RelevanceScore: 0.55},
	}
	bot := &domain.Bot{ID: "bot-1", RerankEnabled: true}

	got, _, err := engine.Retrieve(context.Background(), bot, &fakeProvider{}, "the query")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if chunks.searchQuery.TopK != rerankPoolSize {
		t.Fatalf("search pool = %d, want %d", chunks.searchQuery.TopK, rerankPoolSize)
	}
	if reranker.gotQuery != "the query" {
		t.Fatalf("rerank query = %q, want raw query", reranker.gotQuery)
	}
	if reranker.gotAPIKey != "cohere-key" {
		t.Fatalf("rerank api key = %q", reranker.gotAPIKey)
	}
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want 2", len(got))
	}
	if got[0].Text != "third" || got[1].Text != "first" {
		t.Fatalf("order = [%s, %s], want [third, first]", got[0].Text, got[1].Text)
	}
	if got[0].RerankScore == nil || *got[0].RerankScore != 0.99 {
		t.Fatalf("rerank score missing on top result")
	}
}

func TestRetrieveRerankRequiresCohereKey(t *testing.T) {
	engine, chunks, embedder, _ := newRetrievalFixture(map[string]string{
		domain.SettingComparisonAlgorithm: string(domain.CosineSimilarity),
	})
	bot := &domain.Bot{ID: "bot-1", RerankEnabled: true}

	_, _, err := engine.Retrieve(context.Background(), bot, &fakeProvider{}, "q")
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(embedder.embedded) != 0 {
		t.Fatalf("embedding ran despite the missing rerank key: %v", embedder.embedded)
	}
	if chunks.searchQuery.BotID != "" {
		t.Fatalf("search ran despite the missing rerank key: %+v", chunks.searchQuery)
	}
}
