// Package tools: tool management and registration.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Tool lifecycle management hidden
// - Registration and discovery mechanisms abstracted

package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pocketforge/forge/llm"
	"github.com/pocketforge/forge/model"
	"github.com/pocketforge/forge/project"
	"github.com/pocketforge/forge/session"
	"github.com/pocketforge/forge/storage"
)

// Registry manages available tools with dynamic registration.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for all registered tools.
func (r *Registry) List() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(r.tools))
	for _, tool := range r.tools {
		metadata = append(metadata, tool.Metadata())
	}
	sort.Slice(metadata, func(i, j int) bool { return metadata[i].Name < metadata[j].Name })
	return metadata
}

// Definitions returns wire-level definitions for every registered tool, for
// attaching to a chat completion request.
func (r *Registry) Definitions() []llm.ToolDefinition {
	metadata := r.List()
	defs := make([]llm.ToolDefinition, len(metadata))
	for i, m := range metadata {
		defs[i] = m.Definition()
	}
	return defs
}

// Description returns a formatted description of all tools for LLM prompts.
func (r *Registry) Description() string {
	var descriptions []string
	for _, meta := range r.List() {
		var params []string
		for _, p := range meta.Parameters {
			required := "optional"
			if p.Required {
				required = "required"
			}
			params = append(params, fmt.Sprintf("  - %s (%s): %s [%s]",
				p.Name, p.ParamType, p.Description, required))
		}

		paramStr := strings.Join(params, "\n")
		descriptions = append(descriptions, fmt.Sprintf(
			"Tool: %s\nDescription: %s\nParameters:\n%s",
			meta.Name, meta.Description, paramStr))
	}

	return strings.Join(descriptions, "\n\n")
}

// Toolbox bundles the collaborators a project's tool set operates on. The
// project binding is curried in here once, at session construction.
type Toolbox struct {
	ProjectID string
	Repo      project.Repository
	Memory    storage.MemoryStore
	Todos     *session.TodoStore
	Callback  InteractionCallback
}

// notifyChange forwards a file mutation to the callback when one is set.
func (tb *Toolbox) notifyChange(event model.FileChangeEvent) {
	if tb.Callback != nil {
		tb.Callback.OnFileChanged(event)
	}
}

// ForProject builds a registry with the full tool set bound to one project.
// Returns error if any tool registration fails.
func ForProject(tb *Toolbox) (*Registry, error) {
	registry := NewRegistry()

	toolSet := []Tool{
		// file
		NewReadFileTool(tb),
		NewWriteFileTool(tb),
		NewListFilesTool(tb),
		NewDeleteFileTool(tb),
		NewCreateFolderTool(tb),
		NewRenameFileTool(tb),
		NewCopyFileTool(tb),
		NewMoveFileTool(tb),
		NewGetFileInfoTool(tb),
		NewInsertAtLineTool(tb),
		NewAppendToFileTool(tb),
		NewFindFilesTool(tb),
		NewReadLinesTool(tb),
		NewDiffFilesTool(tb),
		NewProjectSummaryTool(tb),
		// search
		NewSearchFilesTool(tb),
		NewSearchReplaceTool(tb),
		NewPatchFileTool(tb),
		// memory
		NewSaveMemoryTool(tb),
		NewRecallMemoryTool(tb),
		NewListMemoriesTool(tb),
		NewDeleteMemoryTool(tb),
		NewUpdateMemoryTool(tb),
		// todo
		NewCreateTodoTool(tb),
		NewUpdateTodoTool(tb),
		NewListTodosTool(tb),
		// control
		NewAskUserTool(tb),
		NewFinishTaskTool(tb),
	}

	for _, t := range toolSet {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register project tools: %w", err)
		}
	}

	return registry, nil
}
