package domain

import (
	"fmt"
	"time"
)

type SimilarityAlgorithm string

const (
	CosineSimilarity SimilarityAlgorithm = "COSINE_SIMILARITY"
	L2Distance       SimilarityAlgorithm = "L2DISTANCE"
)

func ParseSimilarityAlgorithm(raw string) (SimilarityAlgorithm, error) {
	switch SimilarityAlgorithm(raw) {
	case CosineSimilarity, L2Distance:
		return SimilarityAlgorithm(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown comparison algorithm %q", ErrConfiguration, raw)
	}
}

// RetrievedChunk is one ranked retrieval candidate. DocScore is set only
// when document-level ranking ran; RerankScore only after reranking.
type RetrievedChunk struct {
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	Text         string   `json:"text"`
	Score        float64  `json:"score"`
	DocScore     *float64 `json:"doc_score,omitempty"`
	RerankScore  *float64 `json:"rerank_score,omitempty"`
}

// PromptTurn is a provider-neutral prompt message; the gateway translates
// roles and shapes per provider.
type PromptTurn struct {
	Role    string
	Content string
}

type ChatParams struct {
	Temperature float64
}

type Completion struct {
	Content string
	Role    string
}

// ChatResponse is the outcome of a full RAG chat turn.
type ChatResponse struct {
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Title          string           `json:"title,omitempty"`
	MessageTime    time.Time        `json:"message_time"`
	IsRagResponse  bool             `json:"is_rag_response"`
	UsedHyDE       bool             `json:"used_hyde"`
	Chunks         []RetrievedChunk `json:"chunks,omitempty"`

	// BlockedReason is set when the provider refused the prompt and the
	// refusal became the reply content. Not part of the wire response.
	BlockedReason string `json:"-"`
}
