package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// decodeAll runs the decoder over a canned SSE body and collects every event.
func decodeAll(t *testing.T, body string) []StreamEvent {
	t.Helper()

	events := make(chan StreamEvent, 64)
	go func() {
		defer close(events)
		newStreamDecoder().decode(context.Background(), strings.NewReader(body), events)
	}()

	var got []StreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

func TestDecodeContentDeltas(t *testing.T) {
	body := `data: {"choices":[{"index":0,"delta":{"content":"Hel"}}]}` + "\n" +
		`data: {"choices":[{"index":0,"delta":{"content":"lo"}}]}` + "\n" +
		"data: [DONE]\n"

	events := decodeAll(t, body)
	var text strings.Builder
	for _, ev := range events {
		if ev.Type == EventContentDelta {
			text.WriteString(ev.Content)
		}
	}
	if text.String() != "Hello" {
		t.Errorf("content = %q, want %q", text.String(), "Hello")
	}
	last := events[len(events)-1]
	if last.Type != EventCompleted {
		t.Errorf("last event = %v, want Completed", last.Type)
	}
}

func TestDecodeSkipsMalformedFrames(t *testing.T) {
	body := "data: {not json at all\n" +
		`data: {"choices":[{"index":0,"delta":{"content":"ok"}}]}` + "\n" +
		"data: [DONE]\n"

	events := decodeAll(t, body)
	var sawContent, sawError bool
	for _, ev := range events {
		if ev.Type == EventContentDelta && ev.Content == "ok" {
			sawContent = true
		}
		if ev.Type == EventError {
			sawError = true
		}
	}
	if !sawContent {
		t.Error("content after malformed frame was dropped")
	}
	if sawError {
		t.Error("malformed frame surfaced as an error event")
	}
}

func TestDoneFinalizesOpenSlots(t *testing.T) {
	body := `data: {"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_9","function":{"name":"read_file","arguments":"{\"path\""}}]}}]}` + "\n" +
		`data: {"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":":\"a.txt\"}"}}]}}]}` + "\n" +
		"data: [DONE]\n"

	events := decodeAll(t, body)

	toolIdx, completedIdx := -1, -1
	for i, ev := range events {
		switch ev.Type {
		case EventToolCalls:
			toolIdx = i
			if len(ev.ToolCalls) != 1 {
				t.Fatalf("tool calls = %d, want 1", len(ev.ToolCalls))
			}
			call := ev.ToolCalls[0]
			if call.ID != "call_9" || call.Name != "read_file" {
				t.Errorf("unexpected call identity: %+v", call)
			}
			if string(call.Arguments) != `{"path":"a.txt"}` {
				t.Errorf("arguments = %s", call.Arguments)
			}
		case EventCompleted:
			completedIdx = i
		}
	}

	if toolIdx == -1 {
		t.Fatal("no ToolCalls event emitted")
	}
	if completedIdx == -1 {
		t.Fatal("no Completed event emitted")
	}
	if toolIdx > completedIdx {
		t.Error("ToolCalls emitted after Completed")
	}
}

func TestFinishReasonToolCalls(t *testing.T) {
	body := `data: {"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"c1","function":{"name":"list_files","arguments":"{}"}}]}}]}` + "\n" +
		`data: {"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}` + "\n" +
		"data: [DONE]\n"

	events := decodeAll(t, body)
	var sawTools bool
	var finish string
	for _, ev := range events {
		switch ev.Type {
		case EventToolCalls:
			sawTools = true
		case EventFinishReason:
			finish = ev.FinishReason
		}
	}
	if !sawTools {
		t.Error("finish_reason=tool_calls did not finalize the accumulator")
	}
	if finish != "tool_calls" {
		t.Errorf("finish reason = %q, want tool_calls", finish)
	}
}

func TestEOFWithoutDoneStillCompletes(t *testing.T) {
	body := `data: {"choices":[{"index":0,"delta":{"content":"partial"}}]}` + "\n"

	events := decodeAll(t, body)
	if len(events) == 0 {
		t.Fatal("no events")
	}
	if last := events[len(events)-1]; last.Type != EventCompleted {
		t.Errorf("last event = %v, want Completed on EOF", last.Type)
	}
}

func TestReasoningBridgedIntoThinkingTags(t *testing.T) {
	body := `data: {"choices":[{"index":0,"delta":{"reasoning_content":"hmm"}}]}` + "\n" +
		`data: {"choices":[{"index":0,"delta":{"content":"answer"}}]}` + "\n" +
		"data: [DONE]\n"

	events := decodeAll(t, body)
	var text strings.Builder
	for _, ev := range events {
		if ev.Type == EventContentDelta {
			text.WriteString(ev.Content)
		}
	}
	want := "<thinking>hmm</thinking>\n\nanswer"
	if text.String() != want {
		t.Errorf("bridged text = %q, want %q", text.String(), want)
	}
}

// failingReader yields some data then a transport error.
type failingReader struct {
	data io.Reader
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		n, err := r.data.Read(p)
		if err == io.EOF {
			r.done = true
			return n, nil
		}
		return n, err
	}
	return 0, r.err
}

func TestReadErrorEmitsErrorEvent(t *testing.T) {
	reader := &failingReader{
		data: strings.NewReader(`data: {"choices":[{"index":0,"delta":{"content":"x"}}]}` + "\n"),
		err:  errors.New("connection reset"),
	}

	events := make(chan StreamEvent, 64)
	go func() {
		defer close(events)
		newStreamDecoder().decode(context.Background(), reader, events)
	}()

	var last StreamEvent
	for ev := range events {
		last = ev
	}
	if last.Type != EventError {
		t.Fatalf("last event = %v, want Error", last.Type)
	}
	var apiErr *APIError
	if !errors.As(last.Err, &apiErr) || apiErr.Category != CategoryNetwork {
		t.Errorf("error = %v, want CategoryNetwork APIError", last.Err)
	}
}

func TestCancelledDecodeEndsWithoutTerminalEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &failingReader{
		data: strings.NewReader(""),
		err:  errors.New("connection reset"),
	}

	events := make(chan StreamEvent) // unbuffered: emit must block
	go func() {
		defer close(events)
		newStreamDecoder().decode(ctx, reader, events)
	}()

	var terminal bool
	for ev := range events {
		if ev.Type == EventCompleted || ev.Type == EventError {
			terminal = true
		}
	}
	if terminal {
		t.Error("cancelled stream delivered a terminal event")
	}
}
