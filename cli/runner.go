// Package cli wires the engine packages into terminal commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/pocketforge/forge/agent"
	"github.com/pocketforge/forge/config"
	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/model"
	"github.com/pocketforge/forge/project"
	"github.com/pocketforge/forge/session"
	"github.com/pocketforge/forge/storage"
	"github.com/pocketforge/forge/tools"
)

// Options holds the global CLI flags.
type Options struct {
	Provider   string
	ProjectDir string
	DBPath     string
	MaxTurns   int
	Verbose    bool
}

// consoleCallback surfaces tool side effects on the terminal and answers
// ask_user from stdin.
type consoleCallback struct {
	reader  *bufio.Reader
	verbose bool
}

func newConsoleCallback(verbose bool) *consoleCallback {
	return &consoleCallback{
		reader:  bufio.NewReader(os.Stdin),
		verbose: verbose,
	}
}

func (c *consoleCallback) AskUser(_ context.Context, question string) (string, error) {
	fmt.Printf("\n? %s\n> ", question)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *consoleCallback) OnFileChanged(event model.FileChangeEvent) {
	if c.verbose {
		fmt.Printf("  [%s] %s (+%d -%d)\n", event.Type, event.Path, event.Stats.Added, event.Stats.Removed)
	}
}

func (c *consoleCallback) OnTodoCreated(item model.TodoItem) {
	if c.verbose {
		fmt.Printf("  [TODO] created: %s\n", item.Title)
	}
}

func (c *consoleCallback) OnTodoUpdated(item model.TodoItem) {
	if c.verbose {
		fmt.Printf("  [TODO] %s: %s\n", item.Status, item.Title)
	}
}

func (c *consoleCallback) OnTaskFinished(summary string) {
	fmt.Printf("\n✔ %s\n", summary)
}

var _ tools.InteractionCallback = (*consoleCallback)(nil)

// buildProvider constructs the configured LLM provider from settings and the
// environment.
func buildProvider(opts Options) (llm.Provider, config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, settings, err
	}
	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, settings, err
	}

	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, settings, err
	}
	provider, err := llm.NewProviderBuilder(providerType).
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return nil, settings, err
	}
	return provider, settings, nil
}

// buildAgent assembles the full stack: provider, repository, storage, tool
// registry and agent.
func buildAgent(opts Options) (*agent.Agent, func(), error) {
	provider, settings, err := buildProvider(opts)
	if err != nil {
		return nil, nil, err
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = settings.Agent.ProjectDir
	}
	repo, err := project.NewLocal(projectDir)
	if err != nil {
		return nil, nil, err
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = settings.Agent.DBPath
	}
	memory, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening memory store: %w", err)
	}
	cleanup := func() { _ = memory.Close() }

	toolbox := &tools.Toolbox{
		ProjectID: uuid.New().String(),
		Repo:      repo,
		Memory:    memory,
		Todos:     session.NewTodoStore(),
		Callback:  newConsoleCallback(opts.Verbose),
	}
	registry, err := tools.ForProject(toolbox)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	maxTurns := opts.MaxTurns
	if maxTurns == 0 {
		maxTurns = settings.Agent.MaxTurns
	}

	ag := agent.NewBuilder(provider, tools.NewExecutor(registry)).
		WithMaxTurns(maxTurns).
		Build()
	return ag, cleanup, nil
}

// Run executes a single task and prints the transcript.
func Run(ctx context.Context, task string, opts Options) error {
	ag, cleanup, err := buildAgent(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := ag.Run(ctx, task)
	if result != nil && result.Transcript != "" {
		fmt.Println(result.Transcript)
	}
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Printf("\n(%d tool calls, %d succeeded, %d failed; %d tokens)\n",
			result.ToolStats.Total, result.ToolStats.Succeeded, result.ToolStats.Failed,
			result.Usage.TotalTokens)
	}
	return nil
}

// Ask sends a single question straight to the model, with no tools and no
// project workspace.
func Ask(ctx context.Context, question string, opts Options) error {
	provider, _, err := buildProvider(opts)
	if err != nil {
		return err
	}

	client := llm.NewClient(provider)
	answer, usage, err := client.ChatWithUsage(ctx, []llm.ChatMessage{
		llm.UserMessage(question),
	})
	if err != nil {
		return err
	}

	fmt.Println(answer)
	if opts.Verbose && usage != nil {
		fmt.Printf("\n(%d tokens via %s/%s)\n", usage.TotalTokens, client.Provider().Name(), client.Provider().Model())
	}
	return nil
}

// Chat starts an interactive loop; each line is one task sharing history.
func Chat(ctx context.Context, opts Options) error {
	ag, cleanup, err := buildAgent(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("forge chat. Type 'exit' to quit, 'reset' to clear history.")

	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil // EOF ends the session
		}
		line = strings.TrimSpace(line)

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			ag.Reset()
			fmt.Println("History cleared.")
			continue
		}

		result, err := ag.Run(ctx, line)
		if result != nil && result.Transcript != "" {
			fmt.Println(result.Transcript)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// Tools prints the registered tool set.
func Tools(opts Options) error {
	toolbox := &tools.Toolbox{
		ProjectID: "inspect",
		Repo:      nil,
		Memory:    storage.NewInMemory(),
		Todos:     session.NewTodoStore(),
		Callback:  tools.NopCallback{},
	}
	registry, err := tools.ForProject(toolbox)
	if err != nil {
		return err
	}
	fmt.Println(registry.Description())
	return nil
}
