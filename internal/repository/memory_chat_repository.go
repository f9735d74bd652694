package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

type memoryChatRepository struct {
	mu       sync.RWMutex
	nextID   int64
	messages []domain.ChatMessage
	names    func(studentID string) string
}

// NewMemoryChatRepository returns a slice-backed transcript store. The
// optional nameLookup resolves student names for export rows.
func NewMemoryChatRepository(nameLookup func(studentID string) string) ChatRepository {
	return &memoryChatRepository{nextID: 1, names: nameLookup}
}

func (r *memoryChatRepository) Create(_ context.Context, message *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = r.nextID
	r.nextID++
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memoryChatRepository) GetByUser(_ context.Context, studentID, courseID string) ([]domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.ChatMessage
	for _, message := range r.messages {
		if message.StudentID == studentID && message.CourseID == courseID {
			result = append(result, message)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryChatRepository) GetByConversation(_ context.Context, studentID, courseID, conversationID string) ([]domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.ChatMessage
	for _, message := range r.messages {
		if message.StudentID == studentID && message.CourseID == courseID && message.ConversationID == conversationID {
			result = append(result, message)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryChatRepository) GetAllForExport(_ context.Context, courseID string) ([]ExportRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []ExportRow
	for _, message := range r.messages {
		if courseID != "" && message.CourseID != courseID {
			continue
		}
		name := message.StudentID
		if r.names != nil {
			if resolved := r.names(message.StudentID); resolved != "" {
				name = resolved
			}
		}
		result = append(result, ExportRow{StudentName: name, Message: message})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Message, result[j].Message
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.ConversationID != b.ConversationID {
			return a.ConversationID < b.ConversationID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return result, nil
}
