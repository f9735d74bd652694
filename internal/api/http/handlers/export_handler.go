package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/service"
)

// ExportHandler exposes the admin transcript export.
type ExportHandler struct {
	chats *service.ChatService
}

// NewExportHandler constructs the handler.
func NewExportHandler(chatService *service.ChatService) *ExportHandler {
	return &ExportHandler{chats: chatService}
}

// ExportChats handles GET /api/admin/export-chats. The optional course_id
// query parameter narrows the export to one course.
func (h *ExportHandler) ExportChats(c *fiber.Ctx) error {
	export, err := h.chats.ExportChats(c.UserContext(), c.Query("course_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":            true,
		"exportTime":         export.ExportTime,
		"courseId":           export.CourseID,
		"totalStudents":      export.TotalStudents,
		"totalConversations": export.TotalConversations,
		"totalMessages":      export.TotalMessages,
		"data":               export.Data,
	})
}
