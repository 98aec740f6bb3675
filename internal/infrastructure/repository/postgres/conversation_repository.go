package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) GetForBot(ctx context.Context, id, botID string) (*domain.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, bot_id, title, creation_time, last_update_time
FROM conversations
WHERE id = $1 AND bot_id = $2
`, id, botID)

	var conv domain.Conversation
	err := row.Scan(&conv.ID, &conv.UserID, &conv.BotID, &conv.Title, &conv.CreationTime, &conv.LastUpdateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get conversation "+id, nil)
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM conversations WHERE id = $1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count conversations: %w", err)
	}
	return n > 0, nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (id, user_id, bot_id, title, creation_time, last_update_time)
VALUES ($1,$2,$3,$4,$5,$6)
`, conv.ID, conv.UserID, conv.BotID, conv.Title, conv.CreationTime, conv.LastUpdateTime)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// AppendMessage inserts the message and bumps the conversation's last
// update time in one transaction.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO messages (id, conversation_id, role, content, creation_time)
VALUES ($1,$2,$3,$4,$5)
`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreationTime)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
UPDATE conversations SET last_update_time = $2 WHERE id = $1
`, msg.ConversationID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("bump conversation: %w", err)
	}
	if err := requireRowAffected(res, "bump conversation", msg.ConversationID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append tx: %w", err)
	}
	return nil
}

// ListRecent returns up to limit of the newest messages, re-sorted
// oldest-first so callers can feed them into a prompt directly.
func (r *ConversationRepository) ListRecent(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, role, content, creation_time
FROM messages
WHERE conversation_id = $1
ORDER BY creation_time DESC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreationTime); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreationTime.Before(msgs[j].CreationTime)
	})
	return msgs, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return requireRowAffected(res, "delete conversation", id)
}
