// Stream events emitted while a chat completion response is decoded.
//
// The event channel carries exactly one terminal event (Completed or Error)
// per stream. A channel that closes without a terminal event means the stream
// was cancelled, not that it failed.

package llm

// StreamEventType identifies the kind of a StreamEvent.
type StreamEventType int

const (
	// EventStarted is emitted once when the stream opens.
	EventStarted StreamEventType = iota
	// EventContentDelta carries an incremental fragment of assistant text.
	EventContentDelta
	// EventToolCalls carries finalized tool calls, ordered by slot index.
	EventToolCalls
	// EventFinishReason carries the provider's finish reason for the turn.
	EventFinishReason
	// EventError is terminal: the stream failed.
	EventError
	// EventCompleted is terminal: the stream ended normally.
	EventCompleted
)

// String returns the event type name.
func (t StreamEventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventContentDelta:
		return "content_delta"
	case EventToolCalls:
		return "tool_calls"
	case EventFinishReason:
		return "finish_reason"
	case EventError:
		return "error"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// StreamEvent is one decoded event from a streaming chat completion.
// Only the fields relevant to Type are populated.
type StreamEvent struct {
	Type         StreamEventType
	Content      string     // EventContentDelta
	ToolCalls    []ToolCall // EventToolCalls
	FinishReason string     // EventFinishReason
	Err          error      // EventError
	Usage        *TokenUsage
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventError
}

func startedEvent() StreamEvent {
	return StreamEvent{Type: EventStarted}
}

func contentEvent(text string) StreamEvent {
	return StreamEvent{Type: EventContentDelta, Content: text}
}

func toolCallsEvent(calls []ToolCall) StreamEvent {
	return StreamEvent{Type: EventToolCalls, ToolCalls: calls}
}

func finishEvent(reason string) StreamEvent {
	return StreamEvent{Type: EventFinishReason, FinishReason: reason}
}

func errorEvent(err error) StreamEvent {
	return StreamEvent{Type: EventError, Err: err}
}

func completedEvent(usage *TokenUsage) StreamEvent {
	return StreamEvent{Type: EventCompleted, Usage: usage}
}
