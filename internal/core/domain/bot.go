package domain

type ProviderType string

const (
	ProviderVertexAI ProviderType = "GOOGLE_VERTEXAI"
	ProviderOpenAI   ProviderType = "MS_OPENAI"
)

// Bot is a configured chat persona. ConfigName is denormalized from the
// referenced BotConfig at creation time.
type Bot struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	InitialPrompt        string `json:"initial_prompt"`
	HyDEEnabled          bool   `json:"hyde_enabled"`
	RerankEnabled        bool   `json:"rerank_enabled"`
	DocLevelRankEnabled  bool   `json:"doc_level_rank_enabled"`
	ConfigID             string `json:"config_id"`
	ConfigName           string `json:"config_name,omitempty"`
}

// BotConfig selects a generative-AI destination. Shared between bots,
// never mutated by the pipeline.
type BotConfig struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            ProviderType `json:"type"`
	DestinationName string       `json:"destination_name"`
	APIVersion      string       `json:"api_version"`
	ResourceGroup   string       `json:"resource_group"`
}

// DocumentBotRelationship links a document into a bot's retrieval scope.
// Bot and document names are denormalized for display.
type DocumentBotRelationship struct {
	ID           string `json:"id"`
	BotID        string `json:"bot_id"`
	BotName      string `json:"bot_name"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
}

// AssistantRole returns the role the configured provider reports for its
// own messages.
func (t ProviderType) AssistantRole() string {
	if t == ProviderVertexAI {
		return RoleModel
	}
	return RoleAssistant
}
