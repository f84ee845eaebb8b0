// SSE decoding for OpenAI-compatible chat completion streams.
//
// The wire format is line-oriented: frames are `data: <json>` lines and the
// stream ends with a literal `data: [DONE]`. Decoding is resilient by policy,
// a malformed JSON frame is skipped and the stream keeps flowing; strictness
// here would turn one bad token from a provider into a dead conversation.

package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const doneSentinel = "[DONE]"

// maxFrameSize bounds a single SSE line; large write_file arguments can
// produce frames well beyond bufio's default.
const maxFrameSize = 4 * 1024 * 1024

// streamDecoder turns an SSE body into StreamEvents. It owns the tool call
// accumulator for the stream so that `[DONE]` and finish_reason=tool_calls
// both finalize through the same path.
type streamDecoder struct {
	acc   *ToolCallAccumulator
	usage *TokenUsage

	// reasoningOpen tracks whether reasoning deltas are being bridged into an
	// inline <thinking> tag pair for the segmenter.
	reasoningOpen bool
}

func newStreamDecoder() *streamDecoder {
	return &streamDecoder{acc: NewToolCallAccumulator()}
}

// decode reads SSE frames from r until the terminal frame, EOF, a read error,
// or ctx cancellation, emitting events on the channel. The caller closes the
// channel. On cancellation decode returns without a terminal event.
func (d *streamDecoder) decode(ctx context.Context, r io.Reader, events chan<- StreamEvent) {
	emit := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)

		if payload == doneSentinel {
			d.finish(emit)
			return
		}

		var chunk openai.ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Debug("skipping malformed stream frame", "error", err)
			continue
		}

		if chunk.Usage != nil {
			d.usage = &TokenUsage{
				PromptTokens:     uint32(chunk.Usage.PromptTokens),
				CompletionTokens: uint32(chunk.Usage.CompletionTokens),
				TotalTokens:      uint32(chunk.Usage.TotalTokens),
			}
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		if !d.handleChoice(chunk.Choices[0], emit) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return // cancelled: channel closes without a terminal event
		}
		emit(errorEvent(networkError(err)))
		return
	}

	// EOF without [DONE]: treat like termination so open slots still surface.
	d.finish(emit)
}

// handleChoice emits events for one streamed choice. Returns false when the
// consumer is gone.
func (d *streamDecoder) handleChoice(choice openai.ChatCompletionStreamChoice, emit func(StreamEvent) bool) bool {
	// Reasoning deltas (DeepSeek-style) are bridged into an inline tag pair
	// so the content segmenter renders them as a live thinking block.
	if choice.Delta.ReasoningContent != "" {
		text := choice.Delta.ReasoningContent
		if !d.reasoningOpen {
			d.reasoningOpen = true
			text = "<thinking>" + text
		}
		if !emit(contentEvent(text)) {
			return false
		}
	}

	if choice.Delta.Content != "" {
		text := choice.Delta.Content
		if d.reasoningOpen {
			d.reasoningOpen = false
			text = "</thinking>\n\n" + text
		}
		if !emit(contentEvent(text)) {
			return false
		}
	}

	for _, tc := range choice.Delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		d.acc.Add(ToolCallDelta{
			Index:     index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	if choice.FinishReason != "" && choice.FinishReason != openai.FinishReasonNull {
		if choice.FinishReason == openai.FinishReasonToolCalls {
			if calls := d.acc.Finalize(); len(calls) > 0 {
				if !emit(toolCallsEvent(calls)) {
					return false
				}
			}
		}
		if !emit(finishEvent(string(choice.FinishReason))) {
			return false
		}
	}

	return true
}

// finish closes out the stream: any still-open accumulator slots are
// finalized into a ToolCalls event before Completed.
func (d *streamDecoder) finish(emit func(StreamEvent) bool) {
	if d.reasoningOpen {
		d.reasoningOpen = false
		if !emit(contentEvent("</thinking>")) {
			return
		}
	}
	if calls := d.acc.Finalize(); len(calls) > 0 {
		if !emit(toolCallsEvent(calls)) {
			return
		}
	}
	emit(completedEvent(d.usage))
}
