package domain

import "time"

// MessageType distinguishes student questions from AI answers.
type MessageType string

const (
	MessageTypeQuestion MessageType = "question"
	MessageTypeAnswer   MessageType = "answer"
)

// Valid reports whether the message type is one of the accepted kinds.
func (t MessageType) Valid() bool {
	return t == MessageTypeQuestion || t == MessageTypeAnswer
}

// ChatMessage is one stored transcript row. StudentID and CourseID always
// come from the verified session, never from the request body.
type ChatMessage struct {
	ID             int64
	StudentID      string
	CourseID       string
	ConversationID string
	MessageID      string
	MessageType    MessageType
	Content        string
	Metadata       map[string]any
	CreatedAt      time.Time
}
