package llm

import (
	"net/http"
	"time"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// Destination is a resolved provider endpoint.
type Destination struct {
	URL    string
	APIKey string
}

// Gateway builds chat providers from bot configurations. Adding a
// provider type means adding one case here and one client file.
type Gateway struct {
	destinations map[string]Destination
	client       *http.Client
}

func NewGateway(destinations map[string]Destination, timeout time.Duration) *Gateway {
	return &Gateway{
		destinations: destinations,
		client:       newHTTPClient(timeout),
	}
}

func (g *Gateway) ForConfig(cfg *domain.BotConfig) (ports.ChatProvider, error) {
	if cfg == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "resolve provider", nil)
	}
	dest, ok := g.destinations[cfg.DestinationName]
	if !ok {
		return nil, domain.WrapError(domain.ErrConfiguration, "unknown destination "+cfg.DestinationName, nil)
	}

	switch cfg.Type {
	case domain.ProviderVertexAI:
		return NewVertexAIClient(g.client, dest, cfg.ResourceGroup), nil
	case domain.ProviderOpenAI:
		return NewOpenAIClient(g.client, dest, cfg.APIVersion, cfg.ResourceGroup), nil
	default:
		return nil, domain.WrapError(domain.ErrConfiguration, "unsupported provider type "+string(cfg.Type), nil)
	}
}
