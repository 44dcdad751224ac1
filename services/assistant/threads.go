package assistant

import (
	"context"
	"fmt"
)

// Thread is a server-side conversation context accumulating messages.
type Thread struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// Tool identifies the capability an attachment is registered for.
type Tool struct {
	Type string `json:"type"`
}

// FileSearchTool marks an attachment as retrieval context.
var FileSearchTool = Tool{Type: "file_search"}

// Attachment references an uploaded file plus the tools that may use it.
type Attachment struct {
	FileID string `json:"file_id"`
	Tools  []Tool `json:"tools"`
}

// MessageRequest represents a request to append a message to a thread
type MessageRequest struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// MessageContent is one content block of a thread message
type MessageContent struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text,omitempty"`
}

// Message is a message stored in a thread
type Message struct {
	ID        string           `json:"id"`
	ThreadID  string           `json:"thread_id"`
	Role      string           `json:"role"`
	Content   []MessageContent `json:"content"`
	CreatedAt int64            `json:"created_at"`
}

// Text concatenates the message's text blocks.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			out += part.Text.Value
		}
	}
	return out
}

// CreateThread creates a new empty conversation thread
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var result Thread
	if err := c.doRequest(ctx, "POST", "/v1/threads", struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateMessage appends a message to a thread
func (c *Client) CreateMessage(ctx context.Context, threadID string, req MessageRequest) (*Message, error) {
	endpoint := fmt.Sprintf("/v1/threads/%s/messages", threadID)

	var result Message
	if err := c.doRequest(ctx, "POST", endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMessages retrieves a thread's messages, most recent first
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	endpoint := fmt.Sprintf("/v1/threads/%s/messages?order=desc", threadID)
	if limit > 0 {
		endpoint = fmt.Sprintf("%s&limit=%d", endpoint, limit)
	}

	var result struct {
		Data []Message `json:"data"`
	}
	if err := c.doRequest(ctx, "GET", endpoint, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
