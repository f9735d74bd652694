package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/repository"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

var testIdentity = &domain.UserIdentity{StudentID: "2024001", CourseID: "CS101", Name: "张三"}

func newTestChatService() *ChatService {
	return NewChatService(repository.NewMemoryChatRepository(func(studentID string) string {
		if studentID == "2024001" {
			return "张三"
		}
		return ""
	}))
}

func TestChatService_SaveAndHistory(t *testing.T) {
	svc := newTestChatService()
	ctx := context.Background()

	require.NoError(t, svc.SaveMessage(ctx, testIdentity, "conv-1", "m1", domain.MessageTypeQuestion, "什么是递归?", nil))
	require.NoError(t, svc.SaveMessage(ctx, testIdentity, "conv-1", "m2", domain.MessageTypeAnswer, "递归是……", map[string]any{"model": "gpt"}))

	messages, err := svc.History(ctx, testIdentity, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.MessageTypeQuestion, messages[0].MessageType)
	assert.Equal(t, domain.MessageTypeAnswer, messages[1].MessageType)
	assert.Equal(t, "gpt", messages[1].Metadata["model"])

	// History never leaks across identities.
	other := &domain.UserIdentity{StudentID: "2024002", CourseID: "CS101", Name: "李四"}
	messages, err = svc.History(ctx, other, "")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatService_SaveMessage_Validation(t *testing.T) {
	svc := newTestChatService()
	ctx := context.Background()

	err := svc.SaveMessage(ctx, testIdentity, "", "", domain.MessageTypeQuestion, "hi", nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	err = svc.SaveMessage(ctx, testIdentity, "conv-1", "", domain.MessageType("note"), "hi", nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestChatService_ExportChats_Grouping(t *testing.T) {
	svc := newTestChatService()
	ctx := context.Background()

	other := &domain.UserIdentity{StudentID: "2024002", CourseID: "CS102", Name: "李四"}
	require.NoError(t, svc.SaveMessage(ctx, testIdentity, "conv-1", "m1", domain.MessageTypeQuestion, "q1", nil))
	require.NoError(t, svc.SaveMessage(ctx, testIdentity, "conv-1", "m2", domain.MessageTypeAnswer, "a1", nil))
	require.NoError(t, svc.SaveMessage(ctx, testIdentity, "conv-2", "m3", domain.MessageTypeQuestion, "q2", nil))
	require.NoError(t, svc.SaveMessage(ctx, other, "conv-3", "m4", domain.MessageTypeQuestion, "q3", nil))

	export, err := svc.ExportChats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "all", export.CourseID)
	assert.Equal(t, 2, export.TotalStudents)
	assert.Equal(t, 3, export.TotalConversations)
	assert.Equal(t, 4, export.TotalMessages)

	first := export.Data[0]
	assert.Equal(t, "2024001", first.StudentID)
	assert.Equal(t, "张三", first.StudentName)
	require.Len(t, first.Conversations, 2)
	assert.Equal(t, 2, first.Conversations[0].MessageCount)

	// Course filter narrows the export.
	export, err = svc.ExportChats(ctx, "CS102")
	require.NoError(t, err)
	assert.Equal(t, "CS102", export.CourseID)
	assert.Equal(t, 1, export.TotalStudents)
	assert.Equal(t, 1, export.TotalMessages)
}
