// File: internal/domain/chat_turn.go
package domain

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of a chat exchange. Guest turns never reach storage,
// so UserID is always set for persisted rows.
type ChatTurn struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_turns_user_created,priority:1"`
	Role      string    `json:"role" gorm:"size:16;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_turns_user_created,priority:2"`
}

// PromptMessage is a role/content pair as sent to the completion service.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AsPrompt converts the turn into the wire shape used for prompt assembly.
func (t ChatTurn) AsPrompt() PromptMessage {
	return PromptMessage{Role: t.Role, Content: t.Content}
}

// Sentiment is the coarse classification returned with every chat reply.
type Sentiment string

const (
	SentimentNeutral Sentiment = "neutral"
	SentimentCrisis  Sentiment = "crisis"
)

// Action tells the client which UI flow to open next.
type Action string

const (
	ActionNone            Action = "none"
	ActionTriggerPanic    Action = "trigger_panic"
	ActionTriggerHelpline Action = "trigger_helpline"
)
