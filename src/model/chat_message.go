package model

import "time"

// Owner of a chat message.
const (
	ChatOwnerUser = "USER"
	ChatOwnerAI   = "AI"
)

// ChatMessage is a single message in the conversation about one symbol,
// either sent by the user or produced by the AI assistant.
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SymbolID    uint      `gorm:"not null;index" json:"symbol_id"`
	Owner       string    `gorm:"type:varchar(10);not null" json:"owner"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`

	Symbol *Symbol `gorm:"constraint:OnDelete:CASCADE" json:"symbol,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatMessageView is the API representation of a chat message.
type ChatMessageView struct {
	Owner       string    `json:"owner"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m ChatMessage) ConvertToView() ChatMessageView {
	return ChatMessageView{
		Owner:       m.Owner,
		MessageText: m.MessageText,
		CreatedAt:   m.CreatedAt,
	}
}
