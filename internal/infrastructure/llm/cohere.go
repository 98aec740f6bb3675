package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

const (
	cohereRerankURL   = "https://api.cohere.ai/v1/rerank"
	cohereRerankModel = "rerank-english-v3.0"
)

// CohereReranker reorders retrieval candidates through the Cohere rerank
// API. The API key comes from runtime settings, not from construction,
// so one reranker serves all bots.
type CohereReranker struct {
	client  *http.Client
	baseURL string
}

func NewCohereReranker(timeout time.Duration) *CohereReranker {
	return &CohereReranker{client: newHTTPClient(timeout), baseURL: cohereRerankURL}
}

type cohereRerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (r *CohereReranker) Rerank(ctx context.Context, apiKey, query string, candidates []string, topN int) ([]ports.RerankResult, error) {
	if apiKey == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "rerank requires a cohere api key", nil)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	req := cohereRerankRequest{
		Model:     cohereRerankModel,
		Query:     query,
		Documents: candidates,
		TopN:      topN,
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	var resp cohereRerankResponse
	if err := postJSON(ctx, r.client, r.baseURL, headers, req, &resp); err != nil {
		return nil, err
	}

	out := make([]ports.RerankResult, 0, len(resp.Results))
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= len(candidates) {
			return nil, domain.WrapError(domain.ErrProvider, "rerank result index out of range", nil)
		}
		out = append(out, ports.RerankResult{Index: res.Index, RelevanceScore: res.RelevanceScore})
	}
	return out, nil
}
