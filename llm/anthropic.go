// Anthropic provider implementation using the official anthropic-sdk-go.
//
// The Messages API streams typed events rather than raw OpenAI-style deltas,
// so this provider adapts them onto the shared StreamEvent union: text deltas
// become content deltas, thinking blocks are bridged into inline <thinking>
// tags for the segmenter, and tool_use input fragments feed the same
// accumulator the SSE decoder uses.

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string, maxTokens uint32, temperature float32) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:      client,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: float64(temperature),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Chat sends a chat completion request.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []ChatMessage) (Response, error) {
	return p.ChatWithTools(ctx, messages, nil)
}

// ChatWithTools sends a chat completion request with tool definitions.
func (p *AnthropicProvider) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Response, error) {
	params := p.buildParams(messages, tools)

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}

	result := Response{
		FinishReason: mapAnthropicStopReason(string(message.StopReason)),
	}
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			result.Content += variant.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(variant.Input)
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: inputJSON,
			})
		}
	}

	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		result.Usage = &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return result, nil
}

// StreamChatWithTools streams a completion, adapting Messages API events onto
// the shared StreamEvent union.
func (p *AnthropicProvider) StreamChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (<-chan StreamEvent, error) {
	params := p.buildParams(messages, tools)
	stream := p.client.Messages.NewStreaming(ctx, params)

	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)

		emit := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(startedEvent()) {
			return
		}

		acc := NewToolCallAccumulator()
		thinkingBlocks := make(map[int64]bool)
		var usage TokenUsage
		stopReason := ""

		for stream.Next() {
			event := stream.Current()

			switch eventVariant := event.AsAny().(type) {
			case anthropic.MessageStartEvent:
				usage.PromptTokens = uint32(eventVariant.Message.Usage.InputTokens)

			case anthropic.ContentBlockStartEvent:
				switch block := eventVariant.ContentBlock.AsAny().(type) {
				case anthropic.ToolUseBlock:
					acc.Add(ToolCallDelta{
						Index: int(eventVariant.Index),
						ID:    block.ID,
						Name:  block.Name,
					})
				case anthropic.ThinkingBlock:
					thinkingBlocks[eventVariant.Index] = true
					if !emit(contentEvent("<thinking>")) {
						return
					}
				}

			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if deltaVariant.Text != "" && !emit(contentEvent(deltaVariant.Text)) {
						return
					}
				case anthropic.ThinkingDelta:
					if deltaVariant.Thinking != "" && !emit(contentEvent(deltaVariant.Thinking)) {
						return
					}
				case anthropic.InputJSONDelta:
					acc.Add(ToolCallDelta{
						Index:     int(eventVariant.Index),
						Arguments: deltaVariant.PartialJSON,
					})
				}

			case anthropic.ContentBlockStopEvent:
				if thinkingBlocks[eventVariant.Index] {
					delete(thinkingBlocks, eventVariant.Index)
					if !emit(contentEvent("</thinking>\n\n")) {
						return
					}
				}

			case anthropic.MessageDeltaEvent:
				if eventVariant.Usage.OutputTokens > 0 {
					usage.CompletionTokens = uint32(eventVariant.Usage.OutputTokens)
					usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
				}
				if eventVariant.Delta.StopReason != "" {
					stopReason = string(eventVariant.Delta.StopReason)
				}

			case anthropic.MessageStopEvent:
				if calls := acc.Finalize(); len(calls) > 0 {
					if !emit(toolCallsEvent(calls)) {
						return
					}
				}
				if stopReason != "" {
					if !emit(finishEvent(mapAnthropicStopReason(stopReason))) {
						return
					}
				}
				emit(completedEvent(&usage))
				return
			}
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				return // cancelled
			}
			emit(errorEvent(&APIError{
				Category: CategoryNetwork,
				Message:  fmt.Sprintf("Stream error: %v", err),
			}))
			return
		}

		// Stream ended without message_stop; close out open slots anyway.
		if calls := acc.Finalize(); len(calls) > 0 {
			if !emit(toolCallsEvent(calls)) {
				return
			}
		}
		emit(completedEvent(&usage))
	}()

	return events, nil
}

// buildParams assembles MessageNewParams from shared messages and tools.
func (p *AnthropicProvider) buildParams(messages []ChatMessage, tools []ToolDefinition) anthropic.MessageNewParams {
	anthropicMessages, systemPrompt := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Messages:    anthropicMessages,
		Temperature: anthropic.Float(p.temperature),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}
	if len(tools) > 0 {
		params.Tools = convertToAnthropicTools(tools)
	}

	return params
}

// mapAnthropicStopReason normalizes Anthropic stop reasons to the
// OpenAI-style values the orchestration layer expects.
func mapAnthropicStopReason(reason string) string {
	switch reason {
	case "tool_use":
		return "tool_calls"
	case "end_turn":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return reason
	}
}

// convertToAnthropicMessages converts ChatMessages to Anthropic format.
// The system message is extracted and returned separately; assistant tool
// calls and tool results are carried across as tool_use/tool_result blocks.
func convertToAnthropicMessages(messages []ChatMessage) ([]anthropic.MessageParam, string) {
	var anthropicMessages []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "assistant":
			if len(msg.ToolCalls) > 0 {
				content := &anthropic.MessageParam{
					Role: anthropic.MessageParamRoleAssistant,
				}
				if msg.Content != "" {
					content.Content = append(content.Content, anthropic.NewTextBlock(msg.Content))
				}
				for _, tc := range msg.ToolCalls {
					var input map[string]interface{}
					_ = json.Unmarshal(tc.Arguments, &input)
					content.Content = append(content.Content, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							ID:    tc.ID,
							Name:  tc.Name,
							Input: input,
						},
					})
				}
				anthropicMessages = append(anthropicMessages, *content)
			} else {
				anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}
		case "tool":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))
		}
	}

	return anthropicMessages, systemPrompt
}

// convertToAnthropicTools converts tool definitions to Anthropic format.
func convertToAnthropicTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		properties, _ := t.Parameters["properties"].(map[string]interface{})
		required, _ := t.Parameters["required"].([]string)

		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return result
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
