package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// OpenAIClient talks to an Azure-style OpenAI deployment with versioned
// chat-completion and embedding endpoints.
type OpenAIClient struct {
	client        *http.Client
	dest          Destination
	apiVersion    string
	resourceGroup string
}

func NewOpenAIClient(client *http.Client, dest Destination, apiVersion, resourceGroup string) *OpenAIClient {
	if resourceGroup == "" {
		resourceGroup = "default"
	}
	return &OpenAIClient{client: client, dest: dest, apiVersion: apiVersion, resourceGroup: resourceGroup}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

type openAIEmbeddingRequest struct {
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *OpenAIClient) headers() map[string]string {
	h := map[string]string{"AI-Resource-Group": c.resourceGroup}
	if c.dest.APIKey != "" {
		h["api-key"] = c.dest.APIKey
	}
	return h
}

func (c *OpenAIClient) url(path string) string {
	u := strings.TrimRight(c.dest.URL, "/") + path
	if c.apiVersion != "" {
		u += "?api-version=" + c.apiVersion
	}
	return u
}

func (c *OpenAIClient) Complete(ctx context.Context, turns []domain.PromptTurn, params domain.ChatParams) (*domain.Completion, error) {
	req := openAIChatRequest{Temperature: params.Temperature}
	for _, turn := range turns {
		role := turn.Role
		if role == domain.RoleModel {
			role = domain.RoleAssistant
		}
		req.Messages = append(req.Messages, openAIMessage{Role: role, Content: turn.Content})
	}

	var resp openAIChatResponse
	if err := postJSON(ctx, c.client, c.url("/chat/completions"), c.headers(), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, domain.WrapError(domain.ErrProvider, "openai completion returned no choices", nil)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, &domain.BlockedError{Reason: domain.BlockedSafety}
	}

	return &domain.Completion{
		Role:    domain.RoleAssistant,
		Content: choice.Message.Content,
	}, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp openAIEmbeddingResponse
	if err := postJSON(ctx, c.client, c.url("/embeddings"), c.headers(), openAIEmbeddingRequest{Input: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, domain.WrapError(domain.ErrProvider, "openai embedding returned no data", nil)
	}
	return resp.Data[0].Embedding, nil
}
