package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

const (
	vertexChatPath  = "/models/gemini-1.0-pro:generateContent"
	vertexEmbedPath = "/models/textembedding-gecko:predict"

	handshakeFirst = "OK, let's get started. "
	handshakeLater = "OK"
)

// VertexAIClient talks to a Gemini generateContent endpoint. Gemini has
// no system role, so system turns are rewritten as user/model handshake
// pairs.
type VertexAIClient struct {
	client        *http.Client
	dest          Destination
	resourceGroup string
}

func NewVertexAIClient(client *http.Client, dest Destination, resourceGroup string) *VertexAIClient {
	if resourceGroup == "" {
		resourceGroup = "default"
	}
	return &VertexAIClient{client: client, dest: dest, resourceGroup: resourceGroup}
}

type vertexPart struct {
	Text string `json:"text"`
}

type vertexContent struct {
	Role  string       `json:"role"`
	Parts []vertexPart `json:"parts"`
}

type vertexGenerateRequest struct {
	Contents         []vertexContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generation_config"`
}

type vertexGenerateResponse struct {
	Candidates []struct {
		Content      vertexContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type vertexPredictRequest struct {
	Instances []struct {
		Content string `json:"content"`
	} `json:"instances"`
}

type vertexPredictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

func (c *VertexAIClient) headers() map[string]string {
	h := map[string]string{"AI-Resource-Group": c.resourceGroup}
	if c.dest.APIKey != "" {
		h["Authorization"] = "Bearer " + c.dest.APIKey
	}
	return h
}

func (c *VertexAIClient) Complete(ctx context.Context, turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error) {
	req := vertexGenerateRequest{Contents: shapeVertexContents(turns)}
	req.GenerationConfig.Temperature = params.Temperature

	var resp vertexGenerateResponse
	url := strings.TrimRight(c.dest.URL, "/") + vertexChatPath
	if err := postJSON(ctx, c.client, url, c.headers(), req, &resp); err != nil {
		return nil, err
	}

	if reason := resp.PromptFeedback.BlockReason; reason != "" {
		return nil, &domain.BlockedError{Reason: domain.BlockedOther, Detail: reason}
	}
	if len(resp.Candidates) == 0 {
		return nil, domain.WrapError(domain.ErrProvider, "vertexai completion returned no candidates", nil)
	}

	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case "SAFETY":
		return nil, &domain.BlockedError{Reason: domain.BlockedSafety}
	case "RECITATION":
		return nil, &domain.BlockedError{Reason: domain.BlockedRecitation}
	case "OTHER":
		return nil, &domain.BlockedError{Reason: domain.BlockedOther}
	}
	if len(cand.Content.Parts) == 0 {
		return nil, domain.WrapError(domain.ErrProvider, "vertexai candidate has no content", nil)
	}

	return &domain.Completion{
		Role:    domain.RoleModel,
		Content: cand.Content.Parts[0].Text,
	}, nil
}

func (c *VertexAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var req vertexPredictRequest
	req.Instances = append(req.Instances, struct {
		Content string `json:"content"`
	}{Content: text})

	var resp vertexPredictResponse
	url := strings.TrimRight(c.dest.URL, "/") + vertexEmbedPath
	if err := postJSON(ctx, c.client, url, c.headers(), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 || len(resp.Predictions[0].Embeddings.Values) == 0 {
		return nil, domain.WrapError(domain.ErrProvider, "vertexai embedding returned no values", nil)
	}
	return resp.Predictions[0].Embeddings.Values, nil
}

// shapeVertexContents translates provider-neutral turns into Gemini
// contents. Each system turn becomes a user turn immediately answered by
// a fixed model acknowledgement so the strict user/model alternation
// holds.
func shapeVertexContents(turns []domain.PromptTurn) []vertexContent {
	out := make([]vertexContent, 0, len(turns)+2)
	firstSystem := true
	for _, turn := range turns {
		switch turn.Role {
		case domain.RoleSystem:
			out = append(out, vertexContent{Role: "user", Parts: []vertexPart{{Text: turn.Content}}})
			ack := handshakeLater
			if firstSystem {
				ack = handshakeFirst
				firstSystem = false
			}
			out = append(out, vertexContent{Role: "model", Parts: []vertexPart{{Text: ack}}})
		case domain.RoleAssistant, domain.RoleModel:
			out = append(out, vertexContent{Role: "model", Parts: []vertexPart{{Text: turn.Content}}})
		default:
			out = append(out, vertexContent{Role: "user", Parts: []vertexPart{{Text: turn.Content}}})
		}
	}
	return out
}
