package tools

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/model"
	"github.com/pocketforge/forge/project"
	"github.com/pocketforge/forge/session"
	"github.com/pocketforge/forge/storage"
)

// recordingCallback captures side-effect notifications for assertions.
type recordingCallback struct {
	mu       sync.Mutex
	changes  []model.FileChangeEvent
	todos    []model.TodoItem
	finished []string
	answer   string
}

func (c *recordingCallback) AskUser(_ context.Context, _ string) (string, error) {
	return c.answer, nil
}

func (c *recordingCallback) OnFileChanged(event model.FileChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, event)
}

func (c *recordingCallback) OnTodoCreated(item model.TodoItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.todos = append(c.todos, item)
}

func (c *recordingCallback) OnTodoUpdated(item model.TodoItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.todos = append(c.todos, item)
}

func (c *recordingCallback) OnTaskFinished(summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = append(c.finished, summary)
}

// newTestToolbox builds a toolbox over a temp directory.
func newTestToolbox(t *testing.T) (*Toolbox, *recordingCallback) {
	t.Helper()

	repo, err := project.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	cb := &recordingCallback{}
	return &Toolbox{
		ProjectID: "test-project",
		Repo:      repo,
		Memory:    storage.NewInMemory(),
		Todos:     session.NewTodoStore(),
		Callback:  cb,
	}, cb
}

func newTestExecutor(t *testing.T) (*Executor, *recordingCallback) {
	t.Helper()

	tb, cb := newTestToolbox(t)
	registry, err := ForProject(tb)
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}
	return NewExecutor(registry), cb
}

func call(name, args string) llm.ToolCall {
	return llm.ToolCall{ID: "call_1", Name: name, Arguments: json.RawMessage(args)}
}

func TestExecuteUnknownTool(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), call("launch_rocket", `{}`))
	if result.Success() {
		t.Fatal("unknown tool reported success")
	}
	if got := result.Error.Error(); got != "Unknown tool: launch_rocket" {
		t.Errorf("error = %q", got)
	}
}

func TestExecuteMissingRequiredArgument(t *testing.T) {
	exec, _ := newTestExecutor(t)

	cases := []struct {
		name string
		args string
		want string
	}{
		{"read_file", `{}`, "Missing required argument: path"},
		{"write_file", `{"path":"a.go"}`, "Missing required argument: content"},
		// Order of present arguments must not matter.
		{"write_file", `{"content":"x"}`, "Missing required argument: path"},
		{"save_memory", `{"key":"k"}`, "Missing required argument: value"},
	}
	for _, tc := range cases {
		result := exec.Execute(context.Background(), call(tc.name, tc.args))
		if result.Success() {
			t.Errorf("%s(%s): reported success", tc.name, tc.args)
			continue
		}
		if got := result.Error.Error(); got != tc.want {
			t.Errorf("%s(%s): error = %q, want %q", tc.name, tc.args, got, tc.want)
		}
	}
}

func TestExecuteEmptyStringCountsAsMissing(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), call("read_file", `{"path":""}`))
	if result.Success() {
		t.Fatal("empty path accepted")
	}
	if got := result.Error.Error(); got != "Missing required argument: path" {
		t.Errorf("error = %q", got)
	}
}

func TestExecuteEmptyContentIsValid(t *testing.T) {
	exec, _ := newTestExecutor(t)

	// content present but empty is a legitimate write.
	result := exec.Execute(context.Background(), call("write_file", `{"path":"empty.txt","content":""}`))
	if !result.Success() {
		t.Fatalf("empty content rejected: %v", result.Error)
	}

	read := exec.Execute(context.Background(), call("read_file", `{"path":"empty.txt"}`))
	if !read.Success() || read.Output != "" {
		t.Errorf("read back = %+v", read)
	}
}

func TestExecuteWrapsToolFailures(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), call("read_file", `{"path":"no/such/file.go"}`))
	if result.Success() {
		t.Fatal("reading a missing file reported success")
	}
	if !strings.HasPrefix(result.Error.Error(), "Error executing tool: ") {
		t.Errorf("error = %q, want the execution prefix", result.Error)
	}
}

func TestExecuteInvalidArgumentJSON(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), call("read_file", `{"path": 42`))
	if result.Success() {
		t.Fatal("malformed arguments reported success")
	}
	if !strings.HasPrefix(result.Error.Error(), "Error executing tool: ") {
		t.Errorf("error = %q, want the execution prefix", result.Error)
	}
}

func TestRegistryCoversFullToolSet(t *testing.T) {
	tb, _ := newTestToolbox(t)
	registry, err := ForProject(tb)
	if err != nil {
		t.Fatalf("ForProject: %v", err)
	}

	want := []string{
		"read_file", "write_file", "list_files", "delete_file", "create_folder",
		"rename_file", "copy_file", "move_file", "get_file_info",
		"insert_at_line", "append_to_file", "find_files", "read_lines",
		"diff_files", "get_project_summary",
		"search_files", "search_replace", "patch_file",
		"save_memory", "recall_memory", "list_memories", "delete_memory", "update_memory",
		"create_todo", "update_todo", "list_todos",
		"ask_user", "finish_task",
	}
	for _, name := range want {
		if !registry.Has(name) {
			t.Errorf("registry is missing %s", name)
		}
	}
	if got := len(registry.Names()); got != len(want) {
		t.Errorf("registry has %d tools, want %d: %v", got, len(want), registry.Names())
	}

	defs := registry.Definitions()
	if len(defs) != len(want) {
		t.Errorf("Definitions() returned %d entries", len(defs))
	}
	for _, def := range defs {
		if def.Name == "" || def.Description == "" {
			t.Errorf("definition with empty name or description: %+v", def)
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	tb, _ := newTestToolbox(t)
	registry := NewRegistry()
	if err := registry.Register(NewReadFileTool(tb)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := registry.Register(NewReadFileTool(tb)); err == nil {
		t.Error("duplicate registration accepted")
	}
}
