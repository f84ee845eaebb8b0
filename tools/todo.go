// Todo tools over the session's TodoStore.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pocketforge/forge/model"
)

// --- create_todo ---

type CreateTodoTool struct {
	tb *Toolbox
}

func NewCreateTodoTool(tb *Toolbox) *CreateTodoTool {
	return &CreateTodoTool{tb: tb}
}

func (t *CreateTodoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "create_todo",
		Description: "Create a pending todo item for the current project.",
		Parameters: []ToolParameter{
			{Name: "title", ParamType: "string", Description: "Short title", Required: true},
			{Name: "description", ParamType: "string", Description: "Longer description", Required: false},
		},
	}
}

type createTodoArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (t *CreateTodoTool) parse(raw json.RawMessage) (createTodoArgs, error) {
	var a createTodoArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.Title == "" {
		return a, missingArg("title")
	}
	return a, nil
}

func (t *CreateTodoTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *CreateTodoTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	item := t.tb.Todos.Create(t.tb.ProjectID, a.Title, a.Description)
	if t.tb.Callback != nil {
		t.tb.Callback.OnTodoCreated(item)
	}
	return Successf("Created todo %s: %s", item.ID, item.Title), nil
}

// --- update_todo ---

type UpdateTodoTool struct {
	tb *Toolbox
}

func NewUpdateTodoTool(tb *Toolbox) *UpdateTodoTool {
	return &UpdateTodoTool{tb: tb}
}

func (t *UpdateTodoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "update_todo",
		Description: "Set the status of a todo item (PENDING, IN_PROGRESS or COMPLETED).",
		Parameters: []ToolParameter{
			{Name: "id", ParamType: "string", Description: "Todo ID", Required: true},
			{Name: "status", ParamType: "string", Description: "New status", Required: true},
		},
	}
}

type updateTodoArgs struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (t *UpdateTodoTool) parse(raw json.RawMessage) (updateTodoArgs, error) {
	var a updateTodoArgs
	if err := decodeArgs(raw, &a); err != nil {
		return a, err
	}
	if a.ID == "" {
		return a, missingArg("id")
	}
	if a.Status == "" {
		return a, missingArg("status")
	}
	return a, nil
}

func (t *UpdateTodoTool) Validate(raw json.RawMessage) error {
	_, err := t.parse(raw)
	return err
}

func (t *UpdateTodoTool) Execute(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	a, err := t.parse(raw)
	if err != nil {
		return FailureResult(err), nil
	}

	status, err := model.ParseTodoStatus(a.Status)
	if err != nil {
		return FailureResult(err), nil
	}

	item, err := t.tb.Todos.Update(t.tb.ProjectID, a.ID, status)
	if err != nil {
		return FailureResult(err), nil
	}
	if t.tb.Callback != nil {
		t.tb.Callback.OnTodoUpdated(item)
	}
	return Successf("Todo %s is now %s.", item.ID, item.Status), nil
}

// --- list_todos ---

type ListTodosTool struct {
	tb *Toolbox
}

func NewListTodosTool(tb *Toolbox) *ListTodosTool {
	return &ListTodosTool{tb: tb}
}

func (t *ListTodosTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_todos",
		Description: "List the project's todo items with their statuses.",
		Parameters:  nil,
	}
}

func (t *ListTodosTool) Validate(json.RawMessage) error {
	return nil
}

func (t *ListTodosTool) Execute(_ context.Context, _ json.RawMessage) (ToolResult, error) {
	items := t.tb.Todos.List(t.tb.ProjectID)
	if len(items) == 0 {
		return SuccessResult("No todos."), nil
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "[%s] %s: %s", item.Status, item.ID, item.Title)
		if item.Description != "" {
			fmt.Fprintf(&sb, " - %s", item.Description)
		}
		sb.WriteString("\n")
	}
	return SuccessResult(strings.TrimSuffix(sb.String(), "\n")), nil
}

var (
	_ Tool = (*CreateTodoTool)(nil)
	_ Tool = (*UpdateTodoTool)(nil)
	_ Tool = (*ListTodosTool)(nil)
)
