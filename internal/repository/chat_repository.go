package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/classroom-chat/internal/domain"
)

// ChatRepository defines persistence access for chat transcripts.
type ChatRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) error
	GetByUser(ctx context.Context, studentID, courseID string) ([]domain.ChatMessage, error)
	GetByConversation(ctx context.Context, studentID, courseID, conversationID string) ([]domain.ChatMessage, error)
	GetAllForExport(ctx context.Context, courseID string) ([]ExportRow, error)
}

// ExportRow is a transcript row joined with the roster name for admin export.
type ExportRow struct {
	StudentName string
	Message     domain.ChatMessage
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository returns a Postgres-backed implementation.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

func (r *chatRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_history (student_id, course_id, conversation_id, message_id, message_type, content, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	var metadata []byte
	if message.Metadata != nil {
		var err error
		metadata, err = json.Marshal(message.Metadata)
		if err != nil {
			return err
		}
	}

	return r.pool.QueryRow(ctx, query,
		message.StudentID,
		message.CourseID,
		message.ConversationID,
		message.MessageID,
		message.MessageType,
		message.Content,
		metadata,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *chatRepository) GetByUser(ctx context.Context, studentID, courseID string) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, student_id, course_id, conversation_id, message_id, message_type, content, metadata, created_at
        FROM chat_history
        WHERE student_id=$1 AND course_id=$2
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *chatRepository) GetByConversation(ctx context.Context, studentID, courseID, conversationID string) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, student_id, course_id, conversation_id, message_id, message_type, content, metadata, created_at
        FROM chat_history
        WHERE student_id=$1 AND course_id=$2 AND conversation_id=$3
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, studentID, courseID, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *chatRepository) GetAllForExport(ctx context.Context, courseID string) ([]ExportRow, error) {
	query := `
        SELECT COALESCE(u.name, ch.student_id),
               ch.id, ch.student_id, ch.course_id, ch.conversation_id, ch.message_id,
               ch.message_type, ch.content, ch.metadata, ch.created_at
        FROM chat_history ch
        LEFT JOIN users u ON ch.student_id = u.student_id`

	args := []any{}
	if courseID != "" {
		query += ` WHERE ch.course_id=$1`
		args = append(args, courseID)
	}
	query += ` ORDER BY ch.student_id, ch.conversation_id, ch.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ExportRow
	for rows.Next() {
		var row ExportRow
		var metadata []byte
		if err := rows.Scan(
			&row.StudentName,
			&row.Message.ID,
			&row.Message.StudentID,
			&row.Message.CourseID,
			&row.Message.ConversationID,
			&row.Message.MessageID,
			&row.Message.MessageType,
			&row.Message.Content,
			&metadata,
			&row.Message.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &row.Message.Metadata); err != nil {
				return nil, err
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMessages(rows rowScanner) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	for rows.Next() {
		var message domain.ChatMessage
		var metadata []byte
		if err := rows.Scan(
			&message.ID,
			&message.StudentID,
			&message.CourseID,
			&message.ConversationID,
			&message.MessageID,
			&message.MessageType,
			&message.Content,
			&metadata,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &message.Metadata); err != nil {
				return nil, err
			}
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
