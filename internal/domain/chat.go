package domain

import "time"

const (
	ChatStatusActive   = "active"
	ChatStatusArchived = "archived"

	DefaultChatTitle = "Nueva conversación"
)

// Transcript authors. The Spanish values are part of the stored data and of
// the wire format the browser renders, so they are kept verbatim.
const (
	AuthorUser   = "Tú"
	AuthorAgent  = "Agente"
	AuthorSystem = "Sistema"
)

type Chat struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChatID    string    `json:"chat_id" gorm:"uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"default:'Nueva conversación'"`
	Status    string    `json:"status" gorm:"default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }

// ChatSummary is a chat row joined with its message count, as listed on the
// history panel.
type ChatSummary struct {
	Chat
	MessageCount int64 `json:"message_count"`
}

type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChatID      string    `json:"chat_id" gorm:"not null;index"`
	Author      string    `json:"author" gorm:"not null"`
	Content     string    `json:"content" gorm:"not null"`
	MessageType string    `json:"message_type" gorm:"default:'text'"`
	Timestamp   time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

func (Message) TableName() string { return "messages" }
