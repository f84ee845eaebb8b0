package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/project"
	"github.com/pocketforge/forge/segment"
	"github.com/pocketforge/forge/session"
	"github.com/pocketforge/forge/storage"
	"github.com/pocketforge/forge/tools"
)

// scriptedProvider replays canned event sequences, one per model turn. It
// records the messages of every request so tests can assert the conversation
// shape the model would see.
type scriptedProvider struct {
	turns    [][]llm.StreamEvent
	requests [][]llm.ChatMessage
	openErr  error
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Chat(context.Context, []llm.ChatMessage) (llm.Response, error) {
	return llm.Response{}, errors.New("not scripted")
}

func (p *scriptedProvider) ChatWithTools(context.Context, []llm.ChatMessage, []llm.ToolDefinition) (llm.Response, error) {
	return llm.Response{}, errors.New("not scripted")
}

func (p *scriptedProvider) StreamChatWithTools(ctx context.Context, messages []llm.ChatMessage, _ []llm.ToolDefinition) (<-chan llm.StreamEvent, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}

	snapshot := make([]llm.ChatMessage, len(messages))
	copy(snapshot, messages)
	p.requests = append(p.requests, snapshot)

	turn := len(p.requests) - 1
	events := make(chan llm.StreamEvent, 16)
	go func() {
		defer close(events)
		if turn >= len(p.turns) {
			return
		}
		for _, ev := range p.turns[turn] {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

var _ llm.Provider = (*scriptedProvider)(nil)

func content(text string) llm.StreamEvent {
	return llm.StreamEvent{Type: llm.EventContentDelta, Content: text}
}

func callsEvent(calls ...llm.ToolCall) llm.StreamEvent {
	return llm.StreamEvent{Type: llm.EventToolCalls, ToolCalls: calls}
}

func completed() llm.StreamEvent {
	return llm.StreamEvent{Type: llm.EventCompleted}
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)}
}

func newTestAgent(t *testing.T, provider llm.Provider) *Agent {
	t.Helper()

	repo, err := project.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	registry, err := tools.ForProject(&tools.Toolbox{
		ProjectID: "test",
		Repo:      repo,
		Memory:    storage.NewInMemory(),
		Todos:     session.NewTodoStore(),
		Callback:  tools.NopCallback{},
	})
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}
	return NewBuilder(provider, tools.NewExecutor(registry)).
		WithMaxTurns(5).
		Build()
}

func TestRunPlainCompletion(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{content("Hello "), content("there."), completed()},
	}}
	ag := newTestAgent(t, provider)

	result, err := ag.Run(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Transcript != "Hello there." {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if result.Finished {
		t.Error("finished without finish_task")
	}
}

func TestRunExecutesToolsInOrder(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{
			content("Writing two files."),
			callsEvent(
				toolCall("c1", "write_file", `{"path":"a.txt","content":"A"}`),
				toolCall("c2", "write_file", `{"path":"b.txt","content":"B"}`),
			),
			completed(),
		},
		{content("Both written."), completed()},
	}}
	ag := newTestAgent(t, provider)

	result, err := ag.Run(context.Background(), "write a and b")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The second request carries the assistant tool calls plus one
	// role:"tool" result per call, in call order.
	if len(provider.requests) != 2 {
		t.Fatalf("provider saw %d requests", len(provider.requests))
	}
	second := provider.requests[1]
	n := len(second)
	if n < 3 {
		t.Fatalf("second request too short: %d messages", n)
	}
	assistant := second[n-3]
	if assistant.Role != "assistant" || len(assistant.ToolCalls) != 2 {
		t.Fatalf("assistant message = %+v", assistant)
	}
	first, secondResult := second[n-2], second[n-1]
	if first.Role != "tool" || first.ToolCallID != "c1" {
		t.Errorf("first tool result = %+v", first)
	}
	if secondResult.Role != "tool" || secondResult.ToolCallID != "c2" {
		t.Errorf("second tool result = %+v", secondResult)
	}
	if !strings.Contains(first.Content, `"success":true`) {
		t.Errorf("tool result payload = %q", first.Content)
	}

	if result.ToolStats.Total != 2 {
		t.Errorf("tool stats = %+v", result.ToolStats)
	}
	if !strings.Contains(result.Transcript, "🔧 **write_file**\n✅ ") {
		t.Errorf("transcript missing success markers:\n%s", result.Transcript)
	}
	if strings.Contains(result.Transcript, "⏳") {
		t.Errorf("pending marker survived in final transcript:\n%s", result.Transcript)
	}
}

func TestRunFinishTask(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{
			content("Done, wrapping up."),
			callsEvent(toolCall("c1", "finish_task", `{"summary":"Created the files."}`)),
			completed(),
		},
	}}
	ag := newTestAgent(t, provider)

	result, err := ag.Run(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Finished {
		t.Error("finish_task did not mark the run finished")
	}
	if result.Summary != "Created the files." {
		t.Errorf("summary = %q", result.Summary)
	}
	// finish_task ends the loop: no second model turn.
	if len(provider.requests) != 1 {
		t.Errorf("provider saw %d requests after finish_task", len(provider.requests))
	}
}

func TestRunFailedToolKeepsLooping(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{
			callsEvent(toolCall("c1", "read_file", `{"path":"missing.txt"}`)),
			completed(),
		},
		{content("The file does not exist."), completed()},
	}}
	ag := newTestAgent(t, provider)

	result, err := ag.Run(context.Background(), "read it")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(result.Transcript, "❌ Error executing tool: ") {
		t.Errorf("transcript missing failure marker:\n%s", result.Transcript)
	}

	toolMsg := provider.requests[1][len(provider.requests[1])-1]
	if !strings.Contains(toolMsg.Content, `"success":false`) {
		t.Errorf("failure payload = %q", toolMsg.Content)
	}
	if result.ToolStats.Failed != 1 {
		t.Errorf("tool stats = %+v", result.ToolStats)
	}
}

func TestRunMaxTurnsExceeded(t *testing.T) {
	// Every turn asks for another tool call; the budget runs out.
	turn := []llm.StreamEvent{
		callsEvent(toolCall("c1", "list_files", `{}`)),
		completed(),
	}
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{turn, turn, turn, turn, turn, turn}}
	ag := newTestAgent(t, provider)

	_, err := ag.Run(context.Background(), "loop forever")
	if !errors.Is(err, ErrMaxTurnsExceeded) {
		t.Fatalf("err = %v, want ErrMaxTurnsExceeded", err)
	}
}

func TestRunStreamErrorSurfaces(t *testing.T) {
	streamErr := errors.New("stream blew up")
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{content("partial"), {Type: llm.EventError, Err: streamErr}},
	}}
	ag := newTestAgent(t, provider)

	result, err := ag.Run(context.Background(), "go")
	if !errors.Is(err, streamErr) {
		t.Fatalf("err = %v", err)
	}
	if result == nil || result.Transcript != "partial" {
		t.Errorf("partial transcript not preserved: %+v", result)
	}
}

func TestRunChannelCloseWithoutTerminalIsCancelled(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{content("partial")}, // closes with no Completed/Error
	}}
	ag := newTestAgent(t, provider)

	_, err := ag.Run(context.Background(), "go")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	provider := &blockingProvider{
		started: make(chan struct{}),
		release: release,
	}
	ag := newTestAgent(t, provider)

	done := make(chan error, 1)
	go func() {
		_, err := ag.Run(context.Background(), "long task")
		done <- err
	}()
	<-provider.started

	if _, err := ag.Run(context.Background(), "second task"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent run err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first run: %v", err)
	}
}

// blockingProvider holds its stream open until released.
type blockingProvider struct {
	scriptedProvider
	started chan struct{}
	release chan struct{}
	once    bool
}

func (p *blockingProvider) StreamChatWithTools(ctx context.Context, _ []llm.ChatMessage, _ []llm.ToolDefinition) (<-chan llm.StreamEvent, error) {
	events := make(chan llm.StreamEvent, 1)
	go func() {
		defer close(events)
		if !p.once {
			p.once = true
			close(p.started)
		}
		<-p.release
		events <- llm.StreamEvent{Type: llm.EventCompleted}
	}()
	return events, nil
}

func TestRunPublishesBlockUpdates(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{
			content("Creating the file.\n\n"),
			callsEvent(toolCall("c1", "write_file", `{"path":"x.txt","content":"x"}`)),
			completed(),
		},
		{content("Done."), completed()},
	}}

	repo, err := project.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	registry, err := tools.ForProject(&tools.Toolbox{
		ProjectID: "test",
		Repo:      repo,
		Memory:    storage.NewInMemory(),
		Todos:     session.NewTodoStore(),
		Callback:  tools.NopCallback{},
	})
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}

	var updates [][]segment.Block
	ag := NewBuilder(provider, tools.NewExecutor(registry)).
		WithMaxTurns(5).
		WithUpdateFunc(func(blocks []segment.Block) {
			updates = append(updates, blocks)
		}).
		Build()

	result, err := ag.Run(context.Background(), "create x")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(updates) == 0 {
		t.Fatal("no block updates published")
	}

	// A pending marker must have been visible at some point mid-run.
	var sawRunning bool
	for _, blocks := range updates {
		for _, b := range blocks {
			if tool, ok := b.(segment.ToolCallBlock); ok && tool.Status == segment.StatusRunning {
				sawRunning = true
			}
		}
	}
	if !sawRunning {
		t.Error("no running tool block was ever published")
	}

	// The final blocks agree with a full parse of the final transcript.
	final := result.Blocks
	want := segment.Parse(result.Transcript, false)
	if len(final) != len(want) {
		t.Errorf("final blocks = %d, full parse = %d", len(final), len(want))
	}
}

func TestResetClearsHistory(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{content("hi"), completed()},
		{content("hi again"), completed()},
	}}
	ag := newTestAgent(t, provider)

	if _, err := ag.Run(context.Background(), "one"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ag.History()) == 0 {
		t.Fatal("history empty after run")
	}

	ag.Reset()
	if len(ag.History()) != 0 {
		t.Error("history survived Reset")
	}
}

func TestHistoryAccumulatesAcrossRuns(t *testing.T) {
	provider := &scriptedProvider{turns: [][]llm.StreamEvent{
		{content("first answer"), completed()},
		{content("second answer"), completed()},
	}}
	ag := newTestAgent(t, provider)

	if _, err := ag.Run(context.Background(), "first"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := ag.Run(context.Background(), "second"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	// system + user + assistant + user + assistant
	history := ag.History()
	if len(history) != 5 {
		t.Fatalf("history = %d messages: %+v", len(history), history)
	}
	if history[0].Role != "system" {
		t.Errorf("history[0].Role = %q", history[0].Role)
	}
	if history[3].Content != "second" || history[4].Content != "second answer" {
		t.Errorf("second run not appended: %+v", history[3:])
	}
}
