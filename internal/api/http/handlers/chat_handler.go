package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/classroom-chat/internal/api/dto"
	"github.com/spec-kit/classroom-chat/internal/auth"
	"github.com/spec-kit/classroom-chat/internal/clients"
	"github.com/spec-kit/classroom-chat/internal/domain"
	"github.com/spec-kit/classroom-chat/internal/service"
	apperrors "github.com/spec-kit/classroom-chat/pkg/util"
)

// ChatHandler exposes student-gated transcript and AI proxy endpoints.
type ChatHandler struct {
	chats   *service.ChatService
	backend clients.ChatClient
	logger  *zap.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(chatService *service.ChatService, backend clients.ChatClient, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chats: chatService, backend: backend, logger: logger}
}

// SaveMessage handles POST /api/chat-history.
func (h *ChatHandler) SaveMessage(c *fiber.Ctx) error {
	identity, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}

	var req dto.SaveMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	err := h.chats.SaveMessage(c.UserContext(), identity, req.ConversationID, req.MessageID,
		domain.MessageType(req.MessageType), req.Content, req.Metadata)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// History handles GET /api/chat-history.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	identity, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}

	messages, err := h.chats.History(c.UserContext(), identity, c.Query("conversation_id"))
	if err != nil {
		return err
	}

	out := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, dto.NewChatMessageResponse(message))
	}
	return c.JSON(fiber.Map{"success": true, "messages": out})
}

// SendMessage handles POST /api/chat. It proxies the question to the AI
// backend and persists both sides of the exchange.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	identity, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Query == "" {
		return fiber.NewError(http.StatusBadRequest, "query required")
	}

	completion, err := h.backend.SendMessage(c.UserContext(), backendUser(identity), req.ConversationID, req.Query)
	if err != nil {
		h.logger.Error("chat backend failed", zap.Error(err))
		return fiber.NewError(http.StatusBadGateway, "chat backend unavailable")
	}

	// Transcript writes are best-effort; a storage hiccup must not eat the
	// answer the student already paid a backend round trip for.
	if err := h.chats.SaveMessage(c.UserContext(), identity, completion.ConversationID, "",
		domain.MessageTypeQuestion, req.Query, nil); err != nil {
		h.logger.Warn("failed to save question", zap.Error(err))
	}
	if err := h.chats.SaveMessage(c.UserContext(), identity, completion.ConversationID, completion.MessageID,
		domain.MessageTypeAnswer, completion.Answer, nil); err != nil {
		h.logger.Warn("failed to save answer", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"conversationId": completion.ConversationID,
		"messageId":      completion.MessageID,
		"answer":         completion.Answer,
	})
}

// Conversations handles GET /api/conversations.
func (h *ChatHandler) Conversations(c *fiber.Ctx) error {
	identity, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}

	list, err := h.backend.Conversations(c.UserContext(), backendUser(identity))
	if err != nil {
		// Degrade to an empty list so the UI keeps loading.
		h.logger.Warn("conversations fetch failed", zap.Error(err))
		return c.JSON(clients.ConversationList{Data: []clients.Conversation{}, Limit: 100})
	}
	return c.JSON(list)
}

// Parameters handles GET /api/parameters.
func (h *ChatHandler) Parameters(c *fiber.Ctx) error {
	identity, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}

	params, err := h.backend.Parameters(c.UserContext(), backendUser(identity))
	if err != nil {
		h.logger.Warn("parameters fetch failed", zap.Error(err))
		return c.JSON(fiber.Map{})
	}
	return c.JSON(params)
}

// backendUser is the stable per-student key shown to the AI backend.
func backendUser(identity *domain.UserIdentity) string {
	return identity.StudentID + "-" + identity.CourseID
}
