package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// BotService creates bots and wires documents into their retrieval
// scope. Display names are denormalized at creation time.
type BotService struct {
	bots ports.BotRepository
	docs ports.DocumentRepository
}

func NewBotService(bots ports.BotRepository, docs ports.DocumentRepository) *BotService {
	return &BotService{bots: bots, docs: docs}
}

func (s *BotService) CreateBot(ctx context.Context, bot *domain.Bot) (*domain.Bot, error) {
	if strings.TrimSpace(bot.Name) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "bot name is required", nil)
	}
	if strings.TrimSpace(bot.InitialPrompt) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "bot initial prompt is required", nil)
	}
	cfg, err := s.bots.GetConfig(ctx, bot.ConfigID)
	if err != nil {
		return nil, err
	}

	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}
	bot.ConfigName = cfg.Name
	if err := s.bots.CreateBot(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *BotService) AttachDocument(ctx context.Context, botID, documentID string) (*domain.DocumentBotRelationship, error) {
	bot, err := s.bots.GetBot(ctx, botID)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	rel := &domain.DocumentBotRelationship{
		ID:           uuid.NewString(),
		BotID:        bot.ID,
		BotName:      bot.Name,
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
	}
	if err := s.bots.CreateRelationship(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}
