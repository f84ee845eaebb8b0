// Package llm provides LLM provider abstractions.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling

package llm

import (
	"context"
)

// Provider defines the abstract interface for LLM providers.
// Implementations hide provider-specific details while exposing a consistent
// interface for chat completions with tool support.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a chat completion request.
	Chat(ctx context.Context, messages []ChatMessage) (Response, error)

	// ChatWithTools sends a chat completion request with tool definitions.
	// The LLM may respond with tool calls in Response.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Response, error)

	// StreamChatWithTools opens a streaming chat completion and returns the
	// event channel. The channel delivers at most one terminal event
	// (Completed or Error) and is closed when the stream ends; a close
	// without a terminal event means the stream was cancelled. The returned
	// error covers request construction and connection-open failures only.
	StreamChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (<-chan StreamEvent, error)
}
