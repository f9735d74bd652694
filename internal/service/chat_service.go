package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// ChatService persists transcripts and builds the admin export. Identity
// always comes from the verified session, never from the request.
type ChatService struct {
	chats repository.ChatRepository
}

// NewChatService builds the service.
func NewChatService(chats repository.ChatRepository) *ChatService {
	return &ChatService{chats: chats}
}

// SaveMessage stores one transcript row for the given student.
func (s *ChatService) SaveMessage(ctx context.Context, identity *domain.UserIdentity, conversationID, messageID string, messageType domain.MessageType, content string, metadata map[string]any) error {
	if conversationID == "" || content == "" {
		return apperrors.NewValidationError("conversation id and content required", nil)
	}
	if !messageType.Valid() {
		return apperrors.NewValidationError("message type must be question or answer", nil)
	}
	if messageID == "" {
		messageID = uuid.NewString()
	}

	message := &domain.ChatMessage{
		StudentID:      identity.StudentID,
		CourseID:       identity.CourseID,
		ConversationID: conversationID,
		MessageID:      messageID,
		MessageType:    messageType,
		Content:        content,
		Metadata:       metadata,
	}
	if err := s.chats.Create(ctx, message); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// History returns the student's transcript, optionally scoped to one
// conversation.
func (s *ChatService) History(ctx context.Context, identity *domain.UserIdentity, conversationID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	var err error
	if conversationID != "" {
		messages, err = s.chats.GetByConversation(ctx, identity.StudentID, identity.CourseID, conversationID)
	} else {
		messages, err = s.chats.GetByUser(ctx, identity.StudentID, identity.CourseID)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return messages, nil
}

// ExportMessage is one transcript row in the export payload.
type ExportMessage struct {
	MessageID   string         `json:"messageId"`
	MessageType string         `json:"messageType"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ExportConversation groups one conversation's messages with bounds.
type ExportConversation struct {
	ConversationID string          `json:"conversationId"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	MessageCount   int             `json:"messageCount"`
	Messages       []ExportMessage `json:"messages"`
}

// ExportStudent groups one student's conversations.
type ExportStudent struct {
	StudentName   string               `json:"studentName"`
	StudentID     string               `json:"studentId"`
	CourseID      string               `json:"courseId"`
	Conversations []ExportConversation `json:"conversations"`
}

// Export is the full admin export payload.
type Export struct {
	ExportTime         time.Time       `json:"exportTime"`
	CourseID           string          `json:"courseId"`
	TotalStudents      int             `json:"totalStudents"`
	TotalConversations int             `json:"totalConversations"`
	TotalMessages      int             `json:"totalMessages"`
	Data               []ExportStudent `json:"data"`
}

// ExportChats builds the grouped transcript export, optionally filtered by
// course. Rows arrive ordered by student, conversation, then time.
func (s *ChatService) ExportChats(ctx context.Context, courseID string) (*Export, error) {
	rows, err := s.chats.GetAllForExport(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	export := &Export{ExportTime: time.Now(), CourseID: courseID}
	if export.CourseID == "" {
		export.CourseID = "all"
	}

	var student *ExportStudent
	var conversation *ExportConversation
	flushConversation := func() {
		if conversation != nil && student != nil {
			conversation.StartTime = conversation.Messages[0].Timestamp
			conversation.EndTime = conversation.Messages[len(conversation.Messages)-1].Timestamp
			conversation.MessageCount = len(conversation.Messages)
			student.Conversations = append(student.Conversations, *conversation)
			export.TotalConversations++
		}
		conversation = nil
	}
	flushStudent := func() {
		flushConversation()
		if student != nil {
			export.Data = append(export.Data, *student)
			export.TotalStudents++
		}
		student = nil
	}

	for _, row := range rows {
		m := row.Message
		if student == nil || student.StudentID != m.StudentID || student.CourseID != m.CourseID {
			flushStudent()
			student = &ExportStudent{StudentName: row.StudentName, StudentID: m.StudentID, CourseID: m.CourseID}
		}
		if conversation == nil || conversation.ConversationID != m.ConversationID {
			flushConversation()
			conversation = &ExportConversation{ConversationID: m.ConversationID}
		}
		conversation.Messages = append(conversation.Messages, ExportMessage{
			MessageID:   m.MessageID,
			MessageType: string(m.MessageType),
			Content:     m.Content,
			Metadata:    m.Metadata,
			Timestamp:   m.CreatedAt,
		})
		export.TotalMessages++
	}
	flushStudent()

	return export, nil
}
