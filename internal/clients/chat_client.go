package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spec-kit/classroom-chat/internal/config"
)

// ChatClient talks to the external conversational-AI backend. Students are
// identified to the backend by an opaque per-user key; the backend never
// sees session tokens.
type ChatClient interface {
	SendMessage(ctx context.Context, user, conversationID, query string) (*ChatCompletion, error)
	Conversations(ctx context.Context, user string) (*ConversationList, error)
	Parameters(ctx context.Context, user string) (map[string]any, error)
}

// ChatCompletion is the backend's answer to one message.
type ChatCompletion struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Answer         string `json:"answer"`
	CreatedAt      int64  `json:"created_at"`
}

// ConversationList is a page of the user's conversations.
type ConversationList struct {
	Data    []Conversation `json:"data"`
	HasMore bool           `json:"has_more"`
	Limit   int            `json:"limit"`
}

// Conversation is one conversation summary.
type Conversation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type chatClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewChatClient builds an HTTP client for the chat backend.
func NewChatClient(cfg config.ChatConfig) ChatClient {
	return &chatClient{
		baseURL: cfg.APIBaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *chatClient) SendMessage(ctx context.Context, user, conversationID, query string) (*ChatCompletion, error) {
	payload := map[string]any{
		"inputs":          map[string]any{},
		"query":           query,
		"response_mode":   "blocking",
		"conversation_id": conversationID,
		"user":            user,
	}

	var completion ChatCompletion
	if err := c.do(ctx, http.MethodPost, "/chat-messages", payload, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

func (c *chatClient) Conversations(ctx context.Context, user string) (*ConversationList, error) {
	var list ConversationList
	path := "/conversations?user=" + url.QueryEscape(user)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *chatClient) Parameters(ctx context.Context, user string) (map[string]any, error) {
	var params map[string]any
	path := "/parameters?user=" + url.QueryEscape(user)
	if err := c.do(ctx, http.MethodGet, path, nil, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (c *chatClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("chat: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat: send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("chat: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat: backend returned status %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("chat: unmarshal response: %w", err)
	}
	return nil
}
