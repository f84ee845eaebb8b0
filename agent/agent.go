// The turn loop.
//
// One Run is one task: stream a completion, collect prose and tool calls,
// execute the calls sequentially, feed results back as role:"tool" messages,
// and repeat until the model stops calling tools, calls finish_task, errors,
// or the turn budget runs out.
//
// The live transcript is a single growing string of prose plus tool-status
// marker lines. Status flips (⏳ to ✅/❌) rewrite earlier text, which the
// incremental segmenter detects and handles with a full re-parse.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/segment"
	"github.com/pocketforge/forge/tools"
)

// Agent drives conversations against one provider and one project tool set.
type Agent struct {
	provider llm.Provider
	executor *tools.Executor
	config   Config
	onUpdate UpdateFunc

	mu      sync.Mutex
	running bool

	history []llm.ChatMessage
}

// New creates an agent. Use the Builder for optional configuration.
func New(provider llm.Provider, executor *tools.Executor) *Agent {
	return &Agent{
		provider: provider,
		executor: executor,
		config:   DefaultConfig(),
	}
}

// History returns a copy of the conversation history.
func (a *Agent) History() []llm.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]llm.ChatMessage, len(a.history))
	copy(history, a.history)
	return history
}

// Reset clears the conversation history.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// Run executes one task to completion. Runs are single-flight: a second Run
// while one is in progress returns ErrBusy. A context cancellation mid-stream
// returns ctx.Err() with the partial result.
func (a *Agent) Run(ctx context.Context, userMessage string) (*RunResult, error) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil, ErrBusy
	}
	a.running = true
	if len(a.history) == 0 && a.config.SystemPrompt != "" {
		a.history = append(a.history, llm.SystemMessage(a.config.SystemPrompt))
	}
	a.history = append(a.history, llm.UserMessage(userMessage))
	messages := make([]llm.ChatMessage, len(a.history))
	copy(messages, a.history)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	result := &RunResult{}
	parser := segment.NewStreamParser()
	definitions := a.executor.Registry().Definitions()

	var transcript strings.Builder

	publish := func(streaming bool) []segment.Block {
		blocks := parser.Update(transcript.String(), streaming)
		if a.onUpdate != nil {
			a.onUpdate(blocks)
		}
		return blocks
	}

	for turn := 0; turn < a.config.MaxTurns; turn++ {
		events, err := a.provider.StreamChatWithTools(ctx, messages, definitions)
		if err != nil {
			return result, err
		}

		var (
			content   strings.Builder
			toolCalls []llm.ToolCall
			completed bool
		)

		for ev := range events {
			switch ev.Type {
			case llm.EventContentDelta:
				content.WriteString(ev.Content)
				transcript.WriteString(ev.Content)
				publish(true)
			case llm.EventToolCalls:
				toolCalls = append(toolCalls, ev.ToolCalls...)
			case llm.EventError:
				result.Transcript = transcript.String()
				result.Blocks = publish(false)
				return result, ev.Err
			case llm.EventCompleted:
				completed = true
				result.Usage.Add(ev.Usage)
			}
		}

		if !completed {
			// Channel closed without a terminal event: cancelled.
			result.Transcript = transcript.String()
			result.Blocks = publish(false)
			if err := ctx.Err(); err != nil {
				return result, err
			}
			return result, context.Canceled
		}

		assistant := llm.AssistantMessage(content.String())
		assistant.ToolCalls = toolCalls
		messages = append(messages, assistant)

		if len(toolCalls) == 0 {
			break
		}

		finished := a.executeCalls(ctx, toolCalls, &transcript, publish, result, &messages)
		if finished {
			break
		}
	}

	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if last.Role == "tool" && !result.Finished {
			// Loop exhausted its budget while the model still wanted tools.
			result.Transcript = transcript.String()
			result.Blocks = publish(false)
			a.commitHistory(messages)
			return result, ErrMaxTurnsExceeded
		}
	}

	result.Transcript = transcript.String()
	result.Blocks = publish(false)
	a.commitHistory(messages)
	return result, nil
}

// executeCalls runs the turn's tool calls sequentially, in call order, and
// attaches the results to the conversation in the same order. Returns true
// when finish_task succeeded.
func (a *Agent) executeCalls(ctx context.Context, calls []llm.ToolCall, transcript *strings.Builder, publish func(bool) []segment.Block, result *RunResult, messages *[]llm.ChatMessage) bool {
	finished := false

	for _, call := range calls {
		pending := fmt.Sprintf("\n\n%s **%s**\n⏳ running", segment.ToolMarker, call.Name)
		transcript.WriteString(pending)
		publish(true)

		toolResult := a.executor.Execute(ctx, call)
		result.ToolStats.Record(call.Name, toolResult.Success())

		display := a.markerLine(call.Name, toolResult)
		replaceLast(transcript, pending, display)
		publish(true)

		payload, err := json.Marshal(toolResult)
		if err != nil {
			slog.Debug("marshaling tool result", "tool", call.Name, "error", err)
			payload = []byte(`{"success":false,"error":"internal result encoding failure"}`)
		}
		*messages = append(*messages, llm.ToolMessage(call.ID, string(payload)))

		if call.Name == "finish_task" && toolResult.Success() {
			result.Finished = true
			result.Summary = toolResult.Output
			finished = true
		}
	}

	return finished
}

// markerLine formats the final status line for one executed tool.
func (a *Agent) markerLine(name string, res tools.ToolResult) string {
	glyph := "✅"
	body := res.Output
	if !res.Success() {
		glyph = "❌"
		body = res.Error.Error()
	}
	body = truncateOneLine(body, a.config.TranscriptOutputLimit)
	return fmt.Sprintf("\n\n%s **%s**\n%s %s", segment.ToolMarker, name, glyph, body)
}

// replaceLast swaps the last occurrence of old inside the builder for new.
func replaceLast(sb *strings.Builder, old, new string) {
	s := sb.String()
	idx := strings.LastIndex(s, old)
	if idx < 0 {
		sb.WriteString(new)
		return
	}
	sb.Reset()
	sb.WriteString(s[:idx])
	sb.WriteString(new)
	sb.WriteString(s[idx+len(old):])
}

// truncateOneLine collapses output to a single bounded line for the
// transcript. The model still receives the full output.
func truncateOneLine(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if limit > 0 {
		if runes := []rune(s); len(runes) > limit {
			s = string(runes[:limit]) + "…"
		}
	}
	return s
}

func (a *Agent) commitHistory(messages []llm.ChatMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = messages
}
