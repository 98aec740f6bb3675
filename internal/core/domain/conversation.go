package domain

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleModel     = "model"
)

type Conversation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	BotID          string    `json:"bot_id"`
	Title          string    `json:"title"`
	CreationTime   time.Time `json:"creation_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
}

// Message is append-only; history is reconstructed oldest-first.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreationTime   time.Time `json:"creation_time"`
}
