package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

const historyWindow = 30

// ChatService runs a full RAG chat turn: retrieval, prompt shaping,
// completion and conversation persistence.
type ChatService struct {
	bots          ports.BotRepository
	conversations ports.ConversationRepository
	retrieval     *RetrievalEngine
	resolver      *ProviderResolver
	logger        *slog.Logger
	now           func() time.Time
}

func NewChatService(
	bots ports.BotRepository,
	conversations ports.ConversationRepository,
	retrieval *RetrievalEngine,
	resolver *ProviderResolver,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		bots:          bots,
		conversations: conversations,
		retrieval:     retrieval,
		resolver:      resolver,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChatService) GetChatRagResponse(ctx context.Context, req ports.ChatRequest) (*domain.ChatResponse, error) {
	if strings.TrimSpace(req.UserQuery) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "user query is empty", nil)
	}

	bot, err := s.bots.GetBot(ctx, req.BotID)
	if err != nil {
		return nil, err
	}
	provider, cfg, err := s.resolver.ForBot(ctx, bot)
	if err != nil {
		return nil, err
	}

	conversationID, isNew, title, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	var history []domain.Message
	if !req.PrivateMode && !isNew {
		history, err = s.conversations.ListRecent(ctx, conversationID, historyWindow)
		if err != nil {
			return nil, err
		}
	}

	if isNew && !req.PrivateMode {
		title = s.generateTitle(ctx, provider, req.UserQuery)
	}

	// The conversation record and the user's question are written before
	// the model is consulted, so a turn that dies mid-flight still leaves
	// the question on record.
	questionTime := s.now()
	if !req.PrivateMode {
		if err := s.persistUserTurn(ctx, req, bot, conversationID, isNew, title, questionTime); err != nil {
			return nil, err
		}
	}

	chunks, usedHyDE, err := s.retrieval.Retrieve(ctx, bot, provider, req.UserQuery)
	if err != nil {
		return nil, err
	}

	turns := s.buildTurns(bot, chunks, history, req.UserQuery)

	content := ""
	blockedReason := ""
	completion, err := provider.Complete(ctx, turns, domain.ChatParams{Temperature: chatTemperature})
	switch {
	case err == nil:
		content = completion.Content
	default:
		// Refusals and provider failures become the assistant's reply so
		// the conversation record keeps the turn. They are never retried.
		if blocked, ok := domain.AsBlocked(err); ok {
			content = blocked.Error()
			blockedReason = string(blocked.Reason)
		} else {
			s.logger.Error("chat completion failed", "bot_id", bot.ID, "error", err)
			content = "The assistant could not produce an answer for this question. Please try again later."
		}
	}

	answerTime := s.now()
	if !answerTime.After(questionTime) {
		answerTime = questionTime.Add(time.Millisecond)
	}
	if !req.PrivateMode {
		err := s.conversations.AppendMessage(ctx, &domain.Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			Role:           domain.RoleAssistant,
			Content:        content,
			CreationTime:   answerTime,
		})
		if err != nil {
			return nil, err
		}
	}

	resp := &domain.ChatResponse{
		Role:          cfg.Type.AssistantRole(),
		Content:       content,
		MessageTime:   answerTime,
		IsRagResponse: len(chunks) > 0,
		UsedHyDE:      usedHyDE,
		Chunks:        chunks,
		BlockedReason: blockedReason,
	}
	if !req.PrivateMode {
		resp.ConversationID = conversationID
		resp.Title = title
	}
	return resp, nil
}

// resolveConversation decides which conversation this turn belongs to
// and hands back the stored title when the conversation already exists.
// A provided id must belong to this bot; an id owned by another bot is a
// hard conflict, never silently reused.
func (s *ChatService) resolveConversation(ctx context.Context, req ports.ChatRequest) (string, bool, string, error) {
	if req.PrivateMode {
		return "", true, "", nil
	}
	if req.ConversationID == "" {
		return uuid.NewString(), true, "", nil
	}

	conv, err := s.conversations.GetForBot(ctx, req.ConversationID, req.BotID)
	if err == nil {
		return req.ConversationID, false, conv.Title, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return "", false, "", err
	}

	exists, err := s.conversations.Exists(ctx, req.ConversationID)
	if err != nil {
		return "", false, "", err
	}
	if exists {
		return "", false, "", domain.WrapError(domain.ErrConflict,
			"conversation "+req.ConversationID+" already exists for another bot", nil)
	}
	return req.ConversationID, true, "", nil
}

func (s *ChatService) buildTurns(bot *domain.Bot, chunks []domain.RetrievedChunk, history []domain.Message, query string) []domain.PromptTurn {
	turns := make([]domain.PromptTurn, 0, len(history)+3)
	if strings.TrimSpace(bot.InitialPrompt) != "" {
		turns = append(turns, domain.PromptTurn{Role: domain.RoleSystem, Content: bot.InitialPrompt})
	}
	if len(chunks) > 0 {
		turns = append(turns, domain.PromptTurn{Role: domain.RoleSystem, Content: ragContextPrompt(chunks)})
	}
	for _, msg := range history {
		role := msg.Role
		if role == domain.RoleModel {
			role = domain.RoleAssistant
		}
		turns = append(turns, domain.PromptTurn{Role: role, Content: msg.Content})
	}
	return append(turns, domain.PromptTurn{Role: domain.RoleUser, Content: query})
}

// generateTitle is best-effort; a failed title never fails the turn.
func (s *ChatService) generateTitle(ctx context.Context, provider ports.ChatProvider, query string) string {
	completion, err := provider.Complete(ctx,
		[]domain.PromptTurn{{Role: domain.RoleUser, Content: titlePrompt(query)}},
		domain.ChatParams{Temperature: helperTemperature},
	)
	if err != nil {
		s.logger.Warn("title generation failed", "error", err)
		return ""
	}
	return trimTitle(completion.Content)
}

func (s *ChatService) persistUserTurn(ctx context.Context, req ports.ChatRequest, bot *domain.Bot, conversationID string, isNew bool, title string, at time.Time) error {
	if isNew {
		err := s.conversations.Create(ctx, &domain.Conversation{
			ID:             conversationID,
			UserID:         req.UserID,
			BotID:          bot.ID,
			Title:          title,
			CreationTime:   at,
			LastUpdateTime: at,
		})
		if err != nil {
			return err
		}
	}

	return s.conversations.AppendMessage(ctx, &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        req.UserQuery,
		CreationTime:   at,
	})
}

// DeleteChatData removes a conversation and its messages.
func (s *ChatService) DeleteChatData(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "conversation id is required", nil)
	}
	return s.conversations.Delete(ctx, conversationID)
}
