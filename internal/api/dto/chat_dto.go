package dto

import (
	"time"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// SaveMessageRequest payload for storing one transcript row.
type SaveMessageRequest struct {
	ConversationID string         `json:"conversationId"`
	MessageID      string         `json:"messageId"`
	MessageType    string         `json:"messageType"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ChatMessageResponse is one transcript row returned to the UI.
type ChatMessageResponse struct {
	ConversationID string         `json:"conversationId"`
	MessageID      string         `json:"messageId"`
	MessageType    string         `json:"messageType"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// SendMessageRequest payload for proxying one message to the AI backend.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Query          string `json:"query"`
}

// NewChatMessageResponse maps a domain row to its response shape.
func NewChatMessageResponse(m domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ConversationID: m.ConversationID,
		MessageID:      m.MessageID,
		MessageType:    string(m.MessageType),
		Content:        m.Content,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
	}
}
