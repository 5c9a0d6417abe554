package models

import "time"

type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsPersonal bool      `json:"is_personal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GroupMember struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Conversation is a server-persisted conversation. Title is empty when the
// server has not assigned one yet.
type Conversation struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	AuthorUser      = "user"
	AuthorAssistant = "assistant"
)

type MessageContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Message struct {
	ID               string         `json:"id"`
	ConversationID   string         `json:"conversation_id"`
	SequenceNumber   int            `json:"sequence_number"`
	AuthorType       string         `json:"author_type"`
	AuthorID         string         `json:"author_id"`
	Author           string         `json:"author"`
	ReplyToMessageID string         `json:"reply_to_message_id,omitempty"`
	Content          MessageContent `json:"content"`
	CreatedAt        time.Time      `json:"created_at"`
}

type Assistant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
