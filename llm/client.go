package llm

import (
	"context"
)

// Client is a thin convenience layer over a Provider for callers that want
// completions without running the agent loop (one-shot Q&A, summaries).
type Client struct {
	provider Provider
}

// NewClient wraps a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends the messages and returns just the response text.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithUsage is Chat plus the token usage reported by the provider.
// Usage may be nil when the provider does not report it.
func (c *Client) ChatWithUsage(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return response.Content, response.Usage, nil
}

// Stream opens a streaming completion and returns the event channel.
func (c *Client) Stream(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (<-chan StreamEvent, error) {
	return c.provider.StreamChatWithTools(ctx, messages, tools)
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider {
	return c.provider
}
