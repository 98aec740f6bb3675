package usecase

import (
	"context"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// ProviderResolver turns configuration references (settings keys or bot
// rows) into ready chat providers.
type ProviderResolver struct {
	bots     ports.BotRepository
	settings settingsReader
	gateway  ports.ProviderGateway
}

func NewProviderResolver(bots ports.BotRepository, settings ports.SettingsRepository, gateway ports.ProviderGateway) *ProviderResolver {
	return &ProviderResolver{
		bots:     bots,
		settings: settingsReader{repo: settings},
		gateway:  gateway,
	}
}

func (r *ProviderResolver) ForBot(ctx context.Context, bot *domain.Bot) (ports.ChatProvider, *domain.BotConfig, error) {
	cfg, err := r.bots.GetConfig(ctx, bot.ConfigID)
	if err != nil {
		return nil, nil, err
	}
	provider, err := r.gateway.ForConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return provider, cfg, nil
}

// Embedding resolves the provider behind EMBEDDING_MODEL_CONFIG_ID.
// Every embedding in the store must come from this one model.
func (r *ProviderResolver) Embedding(ctx context.Context) (ports.ChatProvider, error) {
	return r.forConfigSetting(ctx, domain.SettingEmbeddingModelConfigID)
}

// Summarization resolves the provider behind DOCUMENT_SUMMARIZATION_CONFIG_ID.
func (r *ProviderResolver) Summarization(ctx context.Context) (ports.ChatProvider, error) {
	return r.forConfigSetting(ctx, domain.SettingSummarizationConfigID)
}

func (r *ProviderResolver) forConfigSetting(ctx context.Context, settingName string) (ports.ChatProvider, error) {
	values, err := r.settings.load(ctx, settingName)
	if err != nil {
		return nil, err
	}
	configID, err := requiredSetting(values, settingName)
	if err != nil {
		return nil, err
	}
	cfg, err := r.bots.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	return r.gateway.ForConfig(cfg)
}
