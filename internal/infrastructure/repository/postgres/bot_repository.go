package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

type BotRepository struct {
	db *sql.DB
}

func NewBotRepository(db *sql.DB) *BotRepository {
	return &BotRepository{db: db}
}

func (r *BotRepository) GetBot(ctx context.Context, id string) (*domain.Bot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, initial_prompt, hyde_enabled, rerank_enabled, doc_level_rank_enabled, config_id, config_name
FROM bots
WHERE id = $1
`, id)

	var bot domain.Bot
	err := row.Scan(
		&bot.ID, &bot.Name, &bot.InitialPrompt, &bot.HyDEEnabled, &bot.RerankEnabled,
		&bot.DocLevelRankEnabled, &bot.ConfigID, &bot.ConfigName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get bot "+id, nil)
		}
		return nil, fmt.Errorf("scan bot: %w", err)
	}
	return &bot, nil
}

func (r *BotRepository) GetConfig(ctx context.Context, id string) (*domain.BotConfig, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, type, destination_name, api_version, resource_group
FROM bot_configs
WHERE id = $1
`, id)

	var cfg domain.BotConfig
	var typ string
	err := row.Scan(&cfg.ID, &cfg.Name, &typ, &cfg.DestinationName, &cfg.APIVersion, &cfg.ResourceGroup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get bot config "+id, nil)
		}
		return nil, fmt.Errorf("scan bot config: %w", err)
	}
	cfg.Type = domain.ProviderType(typ)
	return &cfg, nil
}

func (r *BotRepository) CreateBot(ctx context.Context, bot *domain.Bot) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO bots (id, name, initial_prompt, hyde_enabled, rerank_enabled, doc_level_rank_enabled, config_id, config_name)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, bot.ID, bot.Name, bot.InitialPrompt, bot.HyDEEnabled, bot.RerankEnabled, bot.DocLevelRankEnabled, bot.ConfigID, bot.ConfigName)
	if err != nil {
		return fmt.Errorf("insert bot: %w", err)
	}
	return nil
}

func (r *BotRepository) CreateRelationship(ctx context.Context, rel *domain.DocumentBotRelationship) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO document_bot_relationships (id, bot_id, bot_name, document_id, document_name)
VALUES ($1,$2,$3,$4,$5)
`, rel.ID, rel.BotID, rel.BotName, rel.DocumentID, rel.DocumentName)
	if err != nil {
		return fmt.Errorf("insert document-bot relationship: %w", err)
	}
	return nil
}
